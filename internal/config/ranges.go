package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RegisterRange is an inclusive register address range.
type RegisterRange struct {
	Lo, Hi uint8
}

// ParseRegisterRanges parses a list like "0x10-0x17,0x19". An empty string
// yields no ranges.
func ParseRegisterRanges(s string) ([]RegisterRange, error) {
	var out []RegisterRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		loStr, hiStr, isRange := strings.Cut(part, "-")
		lo, err := parseReg(loStr)
		if err != nil {
			return nil, err
		}
		hi := lo
		if isRange {
			if hi, err = parseReg(hiStr); err != nil {
				return nil, err
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("range %q is reversed", part)
		}
		out = append(out, RegisterRange{Lo: lo, Hi: hi})
	}
	return out, nil
}

func parseReg(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("register %q: %w", s, err)
	}
	return uint8(v), nil
}

// RegisterWritable reports whether addr falls in one of ranges.
func RegisterWritable(addr uint8, ranges []RegisterRange) bool {
	for _, r := range ranges {
		if addr >= r.Lo && addr <= r.Hi {
			return true
		}
	}
	return false
}
