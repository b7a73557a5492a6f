package personaid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dash short", "P-7", "P007"},
		{"dash two digits", "C-01", "C001"},
		{"dash already padded", "R-001", "R001"},
		{"compact padded", "C001", "C001"},
		{"compact short", "R1", "R001"},
		{"compact long", "C1234", "C1234"},
		{"dash non numeric", "C-xx", "C000"},
		{"dash leading digits", "C-12ab", "C012"},
		{"dash empty suffix", "C-", "C000"},
		{"bare number", "3", "3"},
		{"lowercase untouched", "c001", "c001"},
		{"empty", "", ""},
		{"free text", "persona_alpha", "persona_alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"P-7", "C001", "R1", "c-5", "-5", "A-B-3", "", "X-0099", "P7"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
