package assets

import (
	"bufio"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"strings"
	"sync"
)

//go:embed exercises.txt viz.css
var FS embed.FS

// readLines returns the non-blank, non-comment lines of an embedded file.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// ExerciseLines returns the raw "mode|question" lines of the exercise bank.
func ExerciseLines() ([]string, error) {
	return readLines("exercises.txt")
}

// Stylesheet is the registered view stylesheet.
type Stylesheet struct {
	Body []byte
	ETag string
}

var (
	cssOnce sync.Once
	css     Stylesheet
	cssErr  error
)

// RegisterStylesheet loads the stylesheet once per process; later calls
// return the same registration.
func RegisterStylesheet() (Stylesheet, error) {
	cssOnce.Do(func() {
		body, err := FS.ReadFile("viz.css")
		if err != nil {
			cssErr = err
			return
		}
		sum := sha256.Sum256(body)
		css = Stylesheet{Body: body, ETag: `"` + hex.EncodeToString(sum[:8]) + `"`}
	})
	return css, cssErr
}
