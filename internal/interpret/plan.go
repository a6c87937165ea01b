package interpret

import (
	"fmt"

	"github.com/robalobadob/numviz/internal/numline"
)

// Plan is everything a view needs to render one question.
// Exactly one of Arithmetic, PlaceValue, NumberLine is set for a supported
// mode whose question held usable numbers; none is set for unsupported
// modes or when the branch has nothing to draw.
type Plan struct {
	Mode       string        `json:"mode"`
	Kind       Kind          `json:"kind"`
	Question   string        `json:"question"`
	Operands   *Operands     `json:"operands,omitempty"`
	Arithmetic *Arithmetic   `json:"arithmetic,omitempty"`
	PlaceValue *PlaceValue   `json:"placeValue,omitempty"`
	NumberLine *numline.Line `json:"numberLine,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// Empty reports whether the plan has nothing to draw.
func (p Plan) Empty() bool {
	return p.Arithmetic == nil && p.PlaceValue == nil && p.NumberLine == nil
}

// Interpret dispatches a question to the strategy for its mode.
// It never fails: unknown modes yield an unsupported plan with a message.
func Interpret(mode, text string) Plan {
	q := Normalize(text)
	m, ok := ParseMode(mode)
	p := Plan{Mode: string(m), Question: q}
	if !ok {
		p.Kind = KindUnsupported
		p.Message = fmt.Sprintf("Animation type %q is not implemented yet.", string(m))
		return p
	}

	switch m {
	case ModeBlocks:
		p.Kind = KindPlaceValue
		if pv, ok := ExtractPlaceValue(q); ok {
			p.PlaceValue = &pv
		}
	case ModeNumLine:
		p.Kind = KindNumberLine
		if l, ok := numline.Setup(q); ok {
			p.NumberLine = &l
		}
	case ModeNumbers:
		p.Kind = KindArithmetic
		ops := ExtractTwo(q)
		a, b := ops.A, ops.B
		if operandsReversed(q) {
			a, b = b, a
		}
		r := Derive(DetectOperator(q), a, b)
		p.Operands, p.Arithmetic = &ops, &r
	default:
		p.Kind = KindArithmetic
		ops := ExtractTwo(q)
		r := Derive(storyOps[m], ops.A, ops.B)
		p.Operands, p.Arithmetic = &ops, &r
	}
	return p
}
