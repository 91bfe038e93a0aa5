package main

import (
	"context"
	"testing"
	"time"
)

func TestWithDeadline(t *testing.T) {
	tests := map[string]struct {
		timeout     time.Duration
		hasDeadline bool
	}{
		"zero":     {timeout: 0, hasDeadline: false},
		"negative": {timeout: -time.Second, hasDeadline: false},
		"positive": {timeout: time.Minute, hasDeadline: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := withDeadline(context.Background(), tt.timeout)
			defer cancel()

			if _, ok := ctx.Deadline(); ok != tt.hasDeadline {
				t.Fatalf("expected deadline %v, got %v", tt.hasDeadline, ok)
			}
			if err := ctx.Err(); err != nil {
				t.Fatalf("expected live context, got %v", err)
			}
		})
	}
}
