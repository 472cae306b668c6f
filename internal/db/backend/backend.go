// Package backend opens the configured vector store driver.
package backend

import (
	"fmt"

	"github.com/kailas-cloud/popchoice/internal/config"
	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/db/chromem"
	"github.com/kailas-cloud/popchoice/internal/db/qdrant"
	"github.com/kailas-cloud/popchoice/internal/db/supabase"
	"github.com/kailas-cloud/popchoice/internal/db/valkey"
)

// Handle is an opened store. KV is nil for drivers without key-value support.
type Handle struct {
	Store db.Store
	KV    db.KVStore
}

// Open connects to the driver named in cfg.
// valkey and redis share the rueidis client; both speak FT.SEARCH.
func Open(cfg config.DatabaseConfig) (Handle, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		s, err := valkey.NewStore(valkey.Config{
			Addrs:    cfg.Valkey.Addrs,
			Username: cfg.Valkey.Username,
			Password: cfg.Valkey.Password,
			DB:       cfg.Valkey.DB,
		})
		if err != nil {
			return Handle{}, fmt.Errorf("open %s: %w", cfg.Driver, err)
		}
		return Handle{Store: s, KV: s}, nil

	case config.DriverQdrant:
		s, err := qdrant.NewStore(qdrant.Config{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.APIKey,
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return Handle{}, fmt.Errorf("open qdrant: %w", err)
		}
		return Handle{Store: s}, nil

	case config.DriverSupabase:
		s, err := supabase.NewStore(supabase.Config{
			URL:           cfg.Supabase.URL,
			APIKey:        cfg.Supabase.APIKey,
			MatchFunction: cfg.Supabase.MatchFunction,
		})
		if err != nil {
			return Handle{}, fmt.Errorf("open supabase: %w", err)
		}
		return Handle{Store: s}, nil

	case config.DriverChromem:
		s, err := chromem.NewStore(chromem.Config{
			Path:     cfg.Chromem.Path,
			Compress: cfg.Chromem.Compress,
		})
		if err != nil {
			return Handle{}, fmt.Errorf("open chromem: %w", err)
		}
		return Handle{Store: s}, nil

	default:
		return Handle{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
