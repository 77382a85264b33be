package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"ravi.kumar@example.com", "Ravi Kumar"},
		{"priya_sharma@example.com", "Priya Sharma"},
		{"asha@example.com", "Asha"},
		{"a-b+c@example.com", "A B C"},
		{"@example.com", "Donor"},
		{"no-at-sign", "No At Sign"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayName(tc.address), tc.address)
	}
}
