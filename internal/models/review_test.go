// internal/models/review_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRating(t *testing.T) {
	tests := []struct {
		name string
		avg  float64
		want float64
	}{
		{"two fives and a four", (5.0 + 5.0 + 4.0) / 3.0, 4.7},
		{"exact integer", 4.0, 4.0},
		{"rounds down", 3.44, 3.4},
		{"rounds up", 3.45, 3.5},
		{"no reviews", 0, 0},
		{"single low rating", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundRating(tt.avg))
		})
	}
}
