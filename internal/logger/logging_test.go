package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewToWritesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTo(&buf, "seed")
	l.SetLevel(log.InfoLevel)

	l.Info("loaded", "words", 3)
	assert.Contains(t, buf.String(), "seed")
	assert.Contains(t, buf.String(), "loaded")
	assert.Contains(t, buf.String(), "words=3")
}

func TestSetLevel(t *testing.T) {
	prev := log.GetLevel()
	defer log.SetLevel(prev)

	var buf bytes.Buffer
	l := NewTo(&buf, "srv")
	SetLevel(log.ErrorLevel, l)
	l.Warn("hidden")
	assert.Empty(t, buf.String())
	assert.Equal(t, log.ErrorLevel, log.GetLevel())
}
