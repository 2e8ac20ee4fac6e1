package services_test

import (
	"math"
	"testing"

	"github.com/barhand/barhand-backend/internal/services"
)

func TestNormalizeUnit(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"oz", "oz"},
		{"Ounces", "oz"},
		{"TABLESPOONS", "tbsp"},
		{"leaves", "leaf"},
		{"dashes", "dash"},
		{" splash ", "splash"},
		{"", ""},
		{"jigger", "jigger"},
	}
	for _, c := range cases {
		if got := services.NormalizeUnit(c.in); got != c.want {
			t.Fatalf("NormalizeUnit(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		nil_ bool
	}{
		{"2", 2, false},
		{"1.5", 1.5, false},
		{"3/4", 0.75, false},
		{" 1 / 2 ", 0.5, false},
		{"", 0, true},
		{"a splash", 0, true},
		{"1/0", 0, true},
	}
	for _, c := range cases {
		got := services.ParseAmount(c.in)
		if c.nil_ {
			if got != nil {
				t.Fatalf("ParseAmount(%q): got %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil || math.Abs(*got-c.want) > 1e-9 {
			t.Fatalf("ParseAmount(%q): got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestConvertUnit(t *testing.T) {
	got, ok := services.ConvertUnit(1, services.UnitOz, services.UnitMl)
	if !ok || math.Abs(got-29.5735) > 1e-4 {
		t.Fatalf("1 oz in ml: got %v ok=%v", got, ok)
	}
	got, ok = services.ConvertUnit(50, services.UnitMl, services.UnitCl)
	if !ok || math.Abs(got-5) > 1e-9 {
		t.Fatalf("50 ml in cl: got %v ok=%v", got, ok)
	}

	if _, ok := services.ConvertUnit(2, services.UnitDash, services.UnitMl); ok {
		t.Fatalf("dashes are imprecise, must not convert")
	}
	if _, ok := services.ConvertUnit(2, services.UnitOz, services.UnitWedge); ok {
		t.Fatalf("count units must not convert")
	}

	if !services.IsConvertible(services.UnitBarspoon) {
		t.Fatalf("barspoon has an ml equivalent")
	}
	if services.IsConvertible(services.UnitRinse) {
		t.Fatalf("rinse has no ml equivalent")
	}
}
