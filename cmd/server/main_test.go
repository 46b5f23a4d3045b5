package main

import (
	"market-dash-service/internal/config"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	cfg := config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "file:" + filepath.Join(t.TempDir(), "missing", "market.db"),
		Port:           "0",
	}

	err := run(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
