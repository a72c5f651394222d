package main

import (
	"context"
	"log"
	"os"

	cliAdapter "backoffice/internal/adapters/cli"
	"backoffice/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cliAdapter.Run(context.Background(), cfg, os.Args[1:])
}
