package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, newLogger("WARN", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("nonsense", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("", false).GetLevel())

	logger := newLogger("error", false)
	assert.NotNil(t, logger.Error())
	assert.Nil(t, logger.Info())
}
