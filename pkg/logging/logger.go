// Package logging provides zap logger construction and log sanitization.
package logging

import (
	"go.uber.org/zap"
)

// New builds the root logger for the service. Production environments get
// JSON output at Info level; everything else gets the development console
// encoder at Debug level.
func New(env string) (*zap.Logger, error) {
	if env == "production" || env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
