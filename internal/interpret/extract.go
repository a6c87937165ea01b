package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRunRe = regexp.MustCompile(`\d+`)

	// "<number> ... <place> place" and "<place> place ... <number>".
	numberThenPlaceRe = regexp.MustCompile(`(\d+)\D*?\b(ones|tens|hundreds|thousands)\s+place\b`)
	placeThenNumberRe = regexp.MustCompile(`\b(ones|tens|hundreds|thousands)\s+place\b\D*?(\d+)`)
)

var placePositions = map[string]int{"ones": 0, "tens": 1, "hundreds": 2, "thousands": 3}

var placeNames = []string{"ones", "tens", "hundreds", "thousands"}

// Operands are the first two numbers found in the text.
type Operands struct {
	A     int `json:"a"`
	B     int `json:"b"`
	Count int `json:"count"` // numbers present in the text
}

// ExtractTwo takes the first two digit runs, left to right, as (a, b).
// With fewer than two runs both operands are zero. Leading numbers that are
// not operands are taken anyway; the rule is first occurrence wins.
func ExtractTwo(text string) Operands {
	runs := digitRunRe.FindAllString(text, -1)
	if len(runs) < 2 {
		return Operands{Count: len(runs)}
	}
	return Operands{A: atoi(runs[0]), B: atoi(runs[1]), Count: len(runs)}
}

// Place-value extraction rules, in the order they are tried.
const (
	RulePhrase = "phrase" // named place
	RuleSingle = "single" // lone number, nothing highlighted
	RulePair   = "pair"   // a digit and a number
)

// DigitPlace is one digit of a number with its place.
type DigitPlace struct {
	Digit    int    `json:"digit"`
	Position int    `json:"position"`
	Place    string `json:"place"`
	Value    int    `json:"value"`
}

// PlaceValue is the decomposition shown by the blocks view.
// Position is -1 and Highlight false when no digit is targeted.
type PlaceValue struct {
	Number    int          `json:"number"`
	Digit     int          `json:"digit"`
	Position  int          `json:"position"`
	Place     string       `json:"place,omitempty"`
	Value     int          `json:"value"`
	Highlight bool         `json:"highlight"`
	Rule      string       `json:"rule"`
	Digits    []DigitPlace `json:"digits"`
}

// ExtractPlaceValue reads a place-value question. ok is false when the
// text holds no number at all.
//
// Rules, first match wins:
//  1. a named place next to a number: the digit at that place is targeted.
//  2. exactly one number: every nonzero digit is listed, none highlighted.
//  3. two numbers: a single digit and a longer number make the digit the
//     target. When the lengths do not tell them apart the first is the
//     digit and the second the number.
func ExtractPlaceValue(text string) (PlaceValue, bool) {
	if num, place, ok := namedPlace(text); ok {
		pos := placePositions[place]
		pv := PlaceValue{
			Number:    atoi(num),
			Digit:     digitAt(num, pos),
			Position:  pos,
			Place:     place,
			Highlight: true,
			Rule:      RulePhrase,
			Digits:    nonzeroDigits(num),
		}
		pv.Value = pv.Digit * pow10(pos)
		return pv, true
	}

	runs := digitRunRe.FindAllString(text, -1)
	switch len(runs) {
	case 0:
		return PlaceValue{}, false
	case 1:
		return PlaceValue{
			Number:   atoi(runs[0]),
			Digit:    -1,
			Position: -1,
			Rule:     RuleSingle,
			Digits:   nonzeroDigits(runs[0]),
		}, true
	}

	digit, num := runs[0], runs[1]
	if len(digit) > 1 && len(num) == 1 {
		digit, num = num, digit
	}
	pv := PlaceValue{
		Number:   atoi(num),
		Digit:    atoi(digit),
		Position: -1,
		Rule:     RulePair,
		Digits:   nonzeroDigits(num),
	}
	if len(digit) == 1 {
		if i := strings.IndexByte(num, digit[0]); i >= 0 {
			pv.Position = len(num) - 1 - i
			pv.Place = PlaceName(pv.Position)
			pv.Value = pv.Digit * pow10(pv.Position)
			pv.Highlight = true
		}
	}
	return pv, true
}

// PlaceName names a position counted from the right, starting at 0.
func PlaceName(position int) string {
	if position >= 0 && position < len(placeNames) {
		return placeNames[position]
	}
	return "10^" + strconv.Itoa(position)
}

func namedPlace(text string) (num, place string, ok bool) {
	if m := numberThenPlaceRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2], true
	}
	if m := placeThenNumberRe.FindStringSubmatch(text); m != nil {
		return m[2], m[1], true
	}
	return "", "", false
}

// digitAt returns the digit of num at pos from the right; 0 past the end.
func digitAt(num string, pos int) int {
	i := len(num) - 1 - pos
	if i < 0 {
		return 0
	}
	return int(num[i] - '0')
}

func nonzeroDigits(num string) []DigitPlace {
	out := []DigitPlace{}
	for i := 0; i < len(num); i++ {
		d := int(num[i] - '0')
		if d == 0 {
			continue
		}
		pos := len(num) - 1 - i
		out = append(out, DigitPlace{Digit: d, Position: pos, Place: PlaceName(pos), Value: d * pow10(pos)})
	}
	return out
}

// pow10 returns 10^n, or 0 when it would not fit in an int64.
func pow10(n int) int {
	if n < 0 || n > 18 {
		return 0
	}
	v := 1
	for ; n > 0; n-- {
		v *= 10
	}
	return v
}

// atoi parses a digit run; runs too long for an int read as 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
