package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"Plain integer", "749", 749, true},
		{"Ruble suffix", "749 ₽", 749, true},
		{"Thousands with space", "1 234 ₽", 1234, true},
		{"Comma decimal", "1 234,56 ₽", 1234.56, true},
		{"Dot decimal", "99.90", 99.9, true},
		{"Leading text", "Цена: 5 990 ₽", 5990, true},
		{"Empty", "", 0, false},
		{"Dash placeholder", "—", 0, false},
		{"Text only", "по запросу", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, value, 0.001)
			}
		})
	}
}
