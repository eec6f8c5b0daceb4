package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fluent-ops/flu3nt/internal/classify"
	"github.com/fluent-ops/flu3nt/internal/config"
	"github.com/fluent-ops/flu3nt/internal/knowledge"
)

// openStore builds the knowledge store for the configured backend driver and
// eagerly loads the persisted document.
func openStore(ctx context.Context) (*knowledge.Store, error) {
	var (
		backend knowledge.Backend
		err     error
	)
	switch cfg.Store.Driver {
	case "memory":
		backend = knowledge.NewMemory()
	case "", "sqlite":
		backend, err = knowledge.NewSQLite(cfg.Store.Path)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres driver (FLU3NT_STORE_DATABASE_URL)")
		}
		backend, err = knowledge.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	st := knowledge.NewStore(backend, fuzzyConfig(cfg.Classify))
	st.Open(ctx)
	return st, nil
}

func fuzzyConfig(c config.ClassifyConfig) classify.FuzzyConfig {
	fc := classify.DefaultFuzzyConfig()
	if c.SubstringFactor > 0 {
		fc.SubstringFactor = c.SubstringFactor
	}
	if c.TokenFactor > 0 {
		fc.TokenFactor = c.TokenFactor
	}
	if c.TokenOverlapMin > 0 {
		fc.TokenOverlapMin = c.TokenOverlapMin
	}
	if c.MinConfidence > 0 {
		fc.MinConfidence = c.MinConfidence
	}
	return fc
}

// newDetector builds a Detector over the store with the configured floor.
func newDetector(st *knowledge.Store) *classify.Detector {
	d := classify.NewDetector(st)
	if cfg.Classify.ScoreFloor > 0 {
		d = d.WithFloor(cfg.Classify.ScoreFloor)
	}
	return d
}
