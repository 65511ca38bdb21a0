package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPage(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults on zero limit", 0, 0, 50, 0},
		{"keeps sane values", 20, 40, 20, 40},
		{"caps oversized limit", 500, 0, 50, 0},
		{"negative limit falls back", -5, 0, 50, 0},
		{"negative offset resets", 20, -10, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := clampPage(tt.limit, tt.offset)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
