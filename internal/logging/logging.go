package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. Development gets the human console
// encoder; anything else gets production JSON.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewNop returns a no-op logger for tests and optional dependencies.
func NewNop() *zap.Logger { return zap.NewNop() }
