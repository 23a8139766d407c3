package tui

import (
	"os"
	"strings"
	"sync"

	"mdcal/internal/model"
)

// Terminal apps can't change the user's font. Instead we choose between
// Unicode and ASCII glyph sets for UI affordances, which helps on
// terminals/fonts that don't render some glyphs cleanly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MDCAL_TUI_GLYPHS")))
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "•"
}

// statusGlyph is the one-cell marker shown in lists and calendar bars.
func statusGlyph(s model.Status) string {
	ascii := glyphs() == glyphSetASCII
	switch s {
	case model.StatusReady:
		if ascii {
			return "-"
		}
		return "◌"
	case model.StatusInProgress:
		if ascii {
			return ">"
		}
		return "▶"
	case model.StatusPaused:
		if ascii {
			return "="
		}
		return "⏸"
	case model.StatusCompleted:
		if ascii {
			return "x"
		}
		return "✓"
	default:
		return " "
	}
}
