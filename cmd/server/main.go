package main

import (
	"log"
	"net/http"

	webAdapter "backoffice/internal/adapters/web"
	"backoffice/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	handler := webAdapter.NewHandler(cfg)

	log.Printf("dashboard listening on :%s (API %s)", cfg.ServerPort, cfg.APIBaseURL)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
