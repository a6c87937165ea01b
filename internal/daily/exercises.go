// internal/daily/exercises.go
//
// Exercise bank for the daily explanation.
// Wraps assets.ExerciseLines and exposes:
//   - Bank(): every exercise in file order
//   - Pick(): the exercise for a date (HMAC of the date, see Index)
//
// Notes:
//   • Data is lazily initialized once via sync.Once, reading from embedded files.
//   • Lines whose mode is not a known animation tag are skipped with a warning.

package daily

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numviz/assets"
	"github.com/robalobadob/numviz/internal/interpret"
)

// Exercise is one bank entry.
type Exercise struct {
	Index    int    `json:"index"`
	Mode     string `json:"mode"`
	Question string `json:"question"`
}

var (
	bankOnce sync.Once
	bank     []Exercise
	bankErr  error
)

// ErrEmptyBank is returned when the bank has no usable exercise.
var ErrEmptyBank = errors.New("exercise bank is empty")

func loadBank() {
	lines, err := assets.ExerciseLines()
	if err != nil {
		bankErr = fmt.Errorf("read exercises: %w", err)
		return
	}
	bank, bankErr = parseBank(lines)
}

func parseBank(lines []string) ([]Exercise, error) {
	out := []Exercise{}
	for _, l := range lines {
		mode, question, ok := strings.Cut(l, "|")
		mode, question = strings.TrimSpace(mode), strings.TrimSpace(question)
		if !ok || question == "" {
			log.Warn().Str("line", l).Msg("malformed exercise line")
			continue
		}
		if _, known := interpret.ParseMode(mode); !known {
			log.Warn().Str("mode", mode).Msg("exercise with unknown mode")
			continue
		}
		out = append(out, Exercise{Index: len(out), Mode: mode, Question: question})
	}
	if len(out) == 0 {
		return nil, ErrEmptyBank
	}
	return out, nil
}

// Bank returns every exercise.
func Bank() ([]Exercise, error) {
	bankOnce.Do(loadBank)
	return bank, bankErr
}

// Pick returns the exercise for date.
func Pick(date time.Time, salt string) (Exercise, error) {
	b, err := Bank()
	if err != nil {
		return Exercise{}, err
	}
	return b[Index(date, salt, len(b))], nil
}
