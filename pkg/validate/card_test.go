package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{name: "Plain", input: "4111111111111111", want: "4111111111111111", valid: true},
		{name: "Grouped with spaces", input: " 4111 1111 1111 1111 ", want: "4111111111111111", valid: true},
		{name: "Grouped with dashes", input: "5500-0000-0000-0004", want: "5500000000000004", valid: true},
		{name: "Bad checksum", input: "4111111111111112", want: "4111111111111112"},
		{name: "Too short", input: "79927398713", want: "79927398713"},
		{name: "Letters", input: "4111a11111111111", want: "4111a11111111111"},
		{name: "Empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CardNumber(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}
