package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds tests that touch containers or backup files.
const DefaultTimeout = 30 * time.Second

// Context возвращает context с DefaultTimeout, отменяемый при завершении теста.
func Context(t testing.TB) context.Context {
	t.Helper()
	return ContextWithTimeout(t, DefaultTimeout)
}

// ContextWithTimeout создаёт context с timeout и автоматически отменяет его при завершении теста.
func ContextWithTimeout(t testing.TB, duration time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	t.Cleanup(cancel)

	return ctx
}
