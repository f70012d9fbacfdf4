package main

import (
	"log"

	"github.com/jainabhi1607/loanease-sub003/internal/app"
	"github.com/jainabhi1607/loanease-sub003/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := app.Run(cfg); err != nil {
		log.Fatalf("app: %v", err)
	}
}
