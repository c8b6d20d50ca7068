package pg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGooseLogger_Printf(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gooseLogger{}.Printf("OK   %s (%v)\n", "00001_init.sql", "12ms")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "OK   00001_init.sql (12ms)", entries[0].Message)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	}
}
