package main

import (
	"github.com/joho/godotenv"

	"milpay/internal/app/server"
)

func main() {
	_ = godotenv.Load()
	server.Run()
}
