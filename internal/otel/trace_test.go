package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceEnabledToggle(t *testing.T) {
	orig := TraceEnabled()
	defer setTraceEnabled(orig)

	setTraceEnabled(true)
	assert.True(t, TraceEnabled())

	setTraceEnabled(false)
	assert.False(t, TraceEnabled())
}
