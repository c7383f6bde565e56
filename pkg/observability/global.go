package observability

import (
	"context"

	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
)

var (
	global *Observability
)

// Initialize creates the observability stack from cfg and makes it global.
func Initialize(ctx context.Context, cfg config.Observability, logger logger.Logger) (*Observability, error) {
	obs, obsErr := Init(ctx, cfg, logger)
	if obsErr != nil {
		return nil, obsErr
	}
	global = obs
	return obs, nil
}

// G returns the global observability stack, nil before Initialize.
func G() *Observability {
	return global
}
