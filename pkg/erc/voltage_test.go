package erc

import (
	"math"
	"testing"
)

func TestParseVoltage(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		wantOK bool
	}{
		{"gnd", 0, true},
		{"GND", 0, true},
		{"vcc", math.Inf(1), true},
		{"vee", math.Inf(-1), true},
		{"3.3V", 3.3, true},
		{"V3.3", 3.3, true},
		{"3V3", 3.3, true},
		{"0V", 0, true},
		{"", 0, false},
		{"bogus", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseVoltage(c.in)
		if ok != c.wantOK {
			t.Errorf("ParseVoltage(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseVoltage(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
