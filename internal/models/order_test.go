// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommission(t *testing.T) {
	tests := []struct {
		name           string
		amount         float64
		wantCommission float64
		wantEarning    float64
	}{
		{"round amount", 500.00, 50.00, 450.00},
		{"small amount", 10.00, 1.00, 9.00},
		{"free project", 0.00, 0.00, 0.00},
		{"cent precision", 99.99, 10.00, 89.99},
		{"rounds commission up", 0.05, 0.01, 0.04},
		{"large amount", 12345.67, 1234.57, 11111.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, earning := SplitCommission(tt.amount)
			assert.Equal(t, tt.wantCommission, commission)
			assert.Equal(t, tt.wantEarning, earning)
		})
	}
}

func TestSplitCommissionSumsExactly(t *testing.T) {
	// The earning is defined as the rounded remainder, so the two parts must
	// reassemble the amount without drift for any 2-decimal price.
	amounts := []float64{0.01, 0.99, 1.11, 33.33, 49.95, 100.00, 249.50, 999.99, 10000.01}

	for _, amount := range amounts {
		commission, earning := SplitCommission(amount)
		assert.Equal(t, amount, round2(commission+earning),
			"amount %v split into %v + %v", amount, commission, earning)
	}
}
