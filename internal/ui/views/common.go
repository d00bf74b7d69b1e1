package views

import (
	"github.com/tgienger/desk/internal/ui/styles"
)

// ThemeChanged tells views to rebuild their styles from the current theme
type ThemeChanged struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// status is the one-line message that replaces dialog boxes
type status struct {
	kind statusKind
	text string
}

func (s status) render(st *styles.Styles) string {
	if s.text == "" {
		return ""
	}
	switch s.kind {
	case statusSuccess:
		return st.StatusSuccess.Render("✓ " + s.text)
	case statusWarning:
		return st.StatusWarning.Render("! " + s.text)
	case statusError:
		return st.StatusError.Render("✗ " + s.text)
	}
	return st.StatusBar.Render(s.text)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
