package app

import (
	"fmt"

	"github.com/barhand/barhand-backend/internal/clients/gcp"
	"github.com/barhand/barhand-backend/internal/clients/ollama"
	"github.com/barhand/barhand-backend/internal/clients/redis"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type Clients struct {
	Ollama     ollama.Client
	Vision     gcp.Vision
	MatchCache redis.MatchCache
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	llm, err := ollama.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init ollama client: %w", err)
	}

	var vision gcp.Vision
	if cfg.OCRProvider == "gcp" {
		vision, err = gcp.NewVision(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init vision client: %w", err)
		}
	}

	// Optional: nil when REDIS_ADDR is unset.
	cache, err := redis.NewMatchCache(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init match cache: %w", err)
	}
	if cache == nil {
		log.Info("REDIS_ADDR not set, match-set caching disabled")
	}

	return Clients{Ollama: llm, Vision: vision, MatchCache: cache}, nil
}

func (c Clients) Close() {
	if c.Vision != nil {
		_ = c.Vision.Close()
	}
	if c.MatchCache != nil {
		_ = c.MatchCache.Close()
	}
}
