// internal/numline/line.go
//
// Number-line setup: reads an add/subtract movement out of question text
// and computes the range a number line must display.
//
// Display range rules:
//   - min = lowest point - 2, clamped at 0 unless a point is negative.
//   - max = highest point + 2, raised to at least 10.
//   - when max lies past 10, min is lowered so the line spans at least 10.

package numline

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	rangePadding = 2
	rangeFloor   = 10
)

var (
	// <a> ... <operator> <b>; text is expected to be lowercased already.
	moveRe  = regexp.MustCompile(`(\d+)\D*?(\+|-|−|\bplus\b|\bminus\b|\badd\b|\bsubtract\b|\btake away\b)\s*(\d+)`)
	digitRe = regexp.MustCompile(`\d+`)
)

// Range is the inclusive span of ticks drawn on the line.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n lies on the drawn line.
func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// Line describes a single movement on the number line.
// A line without a target is a lone marked point.
type Line struct {
	Start     int    `json:"start"`
	Target    int    `json:"target"`
	HasTarget bool   `json:"hasTarget"`
	Op        string `json:"op,omitempty"` // "+" or "-"
	Distance  int    `json:"distance"`
	Range     Range  `json:"range"`
}

// Setup reads a movement from text. With no operator pattern the first
// number becomes a lone point. ok is false when the text has no number.
func Setup(text string) (Line, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if m := moveRe.FindStringSubmatch(text); m != nil {
		a, b := atoi(m[1]), atoi(m[3])
		l := Line{Start: a, HasTarget: true, Distance: b}
		switch m[2] {
		case "+", "plus", "add":
			l.Op, l.Target = "+", a+b
		default:
			l.Op, l.Target = "-", a-b
		}
		l.Range = RangeFor(l.Start, l.Target)
		return l, true
	}
	if n := digitRe.FindString(text); n != "" {
		v := atoi(n)
		return Line{Start: v, Target: v, Range: RangeFor(v, v)}, true
	}
	return Line{}, false
}

// RangeFor returns the display range covering both start and target.
func RangeFor(start, target int) Range {
	lo, hi := start, target
	if lo > hi {
		lo, hi = hi, lo
	}
	r := Range{Min: lo - rangePadding, Max: hi + rangePadding}
	if lo >= 0 && r.Min < 0 {
		r.Min = 0
	}
	if r.Max < rangeFloor {
		r.Max = rangeFloor
	}
	if r.Max > rangeFloor && r.Max-r.Min < rangeFloor {
		r.Min = r.Max - rangeFloor
	}
	return r
}

// atoi parses a digit run; runs too long for an int read as 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
