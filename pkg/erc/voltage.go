package erc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseVoltage implements spec §4.5/§6's voltage grammar, case-insensitive:
// "gnd" -> 0, "vcc" -> +Inf, "vee" -> -Inf, "3.3V"/"V3.3"/"3V3" -> 3.3,
// "0V" -> 0. ok is false for strings outside this grammar (including "").
func ParseVoltage(s string) (v float64, ok bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	lower := strings.ToLower(raw)

	switch lower {
	case "gnd":
		return 0, true
	case "vcc":
		return math.Inf(1), true
	case "vee":
		return math.Inf(-1), true
	}

	// "V3.3" style: leading V, rest is a float.
	if strings.HasPrefix(lower, "v") {
		if f, err := strconv.ParseFloat(lower[1:], 64); err == nil {
			return f, true
		}
	}

	// "3.3V" / "0V" style: trailing V, rest is a float.
	if strings.HasSuffix(lower, "v") {
		if f, err := strconv.ParseFloat(lower[:len(lower)-1], 64); err == nil {
			return f, true
		}
	}

	// "3V3" style: a single embedded 'v' standing in for a decimal point.
	if i := strings.IndexByte(lower, 'v'); i > 0 && i < len(lower)-1 {
		rewritten := fmt.Sprintf("%s.%s", lower[:i], lower[i+1:])
		if f, err := strconv.ParseFloat(rewritten, 64); err == nil {
			return f, true
		}
	}

	return 0, false
}
