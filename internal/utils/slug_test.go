package utils_test

import (
	"testing"

	"github.com/barhand/barhand-backend/internal/utils"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"London Dry Gin", 120, "london-dry-gin"},
		{"Crème de Violette", 120, "crème-de-violette"},
		{"  St-Germain!!  ", 120, "st-germain"},
		{"Gin & Tonic", 120, "gin-tonic"},
		{"1800 Añejo", 120, "1800-añejo"},
		{"---", 120, ""},
		{"abcdef", 4, "abcd"},
		{"ab--cd", 3, "ab"},
	}
	for _, c := range cases {
		if got := utils.Slugify(c.in, c.maxLen); got != c.want {
			t.Fatalf("Slugify(%q, %d): got %q, want %q", c.in, c.maxLen, got, c.want)
		}
	}
}
