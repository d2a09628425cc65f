package main

import (
	"log"

	"github.com/rohanbsher/immigration-ai/internal/config"
	"github.com/rohanbsher/immigration-ai/internal/infra/db"
	httpinfra "github.com/rohanbsher/immigration-ai/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
