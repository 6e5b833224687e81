package roster

import "errors"

var (
	ErrNotFound               = errors.New("personnel record not found")
	ErrDuplicateServiceNumber = errors.New("a soldier with this service number already exists")
)
