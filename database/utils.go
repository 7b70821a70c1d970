package database

import (
	"context"
	"time"
)

// Common timeout durations for database operations
const (
	// ShortTimeout for single-document reads and writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for multi-document queries
	MediumTimeout = 10 * time.Second

	// LongTimeout for bulk writes and migrations
	LongTimeout = 30 * time.Second
)

// WithShortTimeout derives a context bounded by ShortTimeout
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}

// WithMediumTimeout derives a context bounded by MediumTimeout
func WithMediumTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, MediumTimeout)
}

// WithLongTimeout derives a context bounded by LongTimeout
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}
