package transform

import (
	"log"

	"github.com/kilianc/directify/internal/directify/config"
)

// NewFromConfig builds the transformer used by the CLI, the server and the
// playground.
func NewFromConfig(cfg *config.Config, logger *log.Logger) *Transformer {
	opts := Options{
		Prefix:   cfg.Prefix,
		Disabled: cfg.Directives.Disabled,
		Logger:   logger,
	}
	if cfg.CacheEnabled() {
		opts.Cache = NewCache()
	}
	return New(opts)
}
