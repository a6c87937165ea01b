// internal/interpret/mode.go
//
// Animation modes supplied by the app shell and the kind of explanation
// each one produces.

package interpret

import "strings"

// Mode is the caller-supplied animation tag.
type Mode string

const (
	ModeBlocks        Mode = "blocks"
	ModeNumbers       Mode = "numbers"
	ModeNumLine       Mode = "numLine"
	ModeStoryAdd      Mode = "storyAdd"
	ModeStoryMinus    Mode = "storyMinus"
	ModeStoryMultiply Mode = "storyMultiply"
	ModeStoryDiv      Mode = "storyDiv"
)

// Modes lists every supported tag in presentation order.
var Modes = []Mode{
	ModeBlocks, ModeNumbers, ModeNumLine,
	ModeStoryAdd, ModeStoryMinus, ModeStoryMultiply, ModeStoryDiv,
}

// ParseMode matches a tag exactly, ignoring surrounding whitespace.
func ParseMode(tag string) (Mode, bool) {
	m := Mode(strings.TrimSpace(tag))
	for _, known := range Modes {
		if m == known {
			return m, true
		}
	}
	return m, false
}

// Kind is the explanation family a plan renders as.
type Kind string

const (
	KindPlaceValue  Kind = "placeValue"
	KindArithmetic  Kind = "arithmetic"
	KindNumberLine  Kind = "numberLine"
	KindUnsupported Kind = "unsupported"
)

// storyOps fixes the operator for the word-problem modes.
var storyOps = map[Mode]Op{
	ModeStoryAdd:      OpAdd,
	ModeStoryMinus:    OpSubtract,
	ModeStoryMultiply: OpMultiply,
	ModeStoryDiv:      OpDivide,
}

// Normalize lowercases and trims question text.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
