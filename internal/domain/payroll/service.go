package payroll

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	store        StoreAPI
	roster       RosterAPI
	totalsPolicy string
}

// NewService wires the workflow to its repositories. totalsPolicy decides
// whether Approve trusts the net pay figures submitted with the request
// (PolicyTrustClient, the historical behavior) or recomputes every line
// from its components (PolicyRecompute).
func NewService(store StoreAPI, roster RosterAPI, totalsPolicy string) *Service {
	if totalsPolicy == "" {
		totalsPolicy = PolicyTrustClient
	}
	return &Service{store: store, roster: roster, totalsPolicy: totalsPolicy}
}

type ApproveRequest struct {
	Month      string     `json:"month"`
	Year       int        `json:"year"`
	Personnel  []LineItem `json:"personnel"`
	ApprovedBy string     `json:"approvedBy"`
	CreatedBy  string     `json:"createdBy"`
	Notes      string     `json:"notes"`
}

// ActivePersonnel projects the active roster for review ahead of an
// approval. It reads only and never mutates state.
func (s *Service) ActivePersonnel(ctx context.Context) (*Preview, error) {
	soldiers, err := s.roster.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	preview := &Preview{Personnel: make([]LineItem, 0, len(soldiers))}
	for _, soldier := range soldiers {
		item := Snapshot(soldier)
		preview.Personnel = append(preview.Personnel, item)
		preview.TotalAmount += item.NetPay
	}
	preview.Count = len(preview.Personnel)
	return preview, nil
}

// Approve validates the request, rejects duplicate periods, totals the
// batch, sanitizes it and persists it in approved state. The stored batch
// is returned with its assigned id.
func (s *Service) Approve(ctx context.Context, req ApproveRequest, actor string) (*Batch, error) {
	if strings.TrimSpace(req.Month) == "" || req.Year == 0 {
		return nil, ErrMissingPeriod
	}
	if len(req.Personnel) == 0 {
		return nil, ErrNoPersonnel
	}

	// Friendly early rejection. The real guarantee is the unique index
	// checked again inside Insert; two racing approvals cannot both win.
	if _, err := s.store.FindByPeriod(ctx, req.Month, req.Year); err == nil {
		return nil, ErrDuplicatePeriod
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	personnel := make([]LineItem, len(req.Personnel))
	copy(personnel, req.Personnel)

	var total float64
	for i := range personnel {
		if s.totalsPolicy == PolicyRecompute {
			item := &personnel[i]
			item.TotalEarnings, item.TotalDeductions, item.NetPay = Totals(item.Salary, item.Deductions)
		}
		total += personnel[i].NetPay
	}

	approvedBy := strings.TrimSpace(req.ApprovedBy)
	if approvedBy == "" {
		approvedBy = strings.TrimSpace(actor)
	}
	if approvedBy == "" {
		approvedBy = DefaultApprover
	}
	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = DefaultApprover
	}

	now := time.Now().UTC()
	batch := Batch{
		Month:       req.Month,
		Year:        req.Year,
		Personnel:   personnel,
		TotalAmount: total,
		Status:      StatusApproved,
		ApprovedBy:  approvedBy,
		ApprovedAt:  &now,
		CreatedBy:   createdBy,
		Notes:       req.Notes,
	}

	sanitizeBatch(&batch)

	return s.store.Insert(ctx, batch)
}

func (s *Service) History(ctx context.Context, filter HistoryFilter, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.List(ctx, filter, limit)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Batch, error) {
	return s.store.GetByID(ctx, id)
}

// Delete removes a batch permanently. Roster records are untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
