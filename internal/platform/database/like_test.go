package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"alice": "%alice%",
		"%%":    `%\%\%%`,
		"__":    `%\_\_%`,
		`a\b`:   `%a\\b%`,
		"50%_":  `%50\%\_%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, ContainsPattern(in), in)
	}
}
