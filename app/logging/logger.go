package logging

import (
	"volunvibe/app/config"

	"go.uber.org/zap"
)

// NewLogger builds JSON production logging in production and human-readable
// development logging everywhere else.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
