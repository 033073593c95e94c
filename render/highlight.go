// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/highlight.go
// Summary: Chroma-based colouring of item text with go-enry language detection.

package render

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"
)

const (
	defaultStyleName = "catppuccin-mocha"
	maxCachedTexts   = 512
)

// detectCandidates bounds the classifier to languages likely in item text.
var detectCandidates = []string{"Go", "Python", "JavaScript", "Shell", "SQL", "JSON", "YAML", "Markdown"}

// Segment is a run of text sharing one style.
type Segment struct {
	Text  string
	Style tcell.Style
}

// Highlighter colours short texts. It is safe for concurrent use.
type Highlighter struct {
	style *chroma.Style
	lexer string
	base  tcell.Style

	mu    sync.Mutex
	cache map[string][]Segment
}

// NewHighlighter resolves styleName (default catppuccin-mocha). An empty
// lexer name means detect per text.
func NewHighlighter(styleName, lexer string) *Highlighter {
	if styleName == "" {
		styleName = defaultStyleName
	}
	style := styles.Get(styleName)
	h := &Highlighter{
		style: style,
		lexer: lexer,
		cache: make(map[string][]Segment),
	}
	h.base = tcell.StyleDefault
	if fg := style.Get(chroma.Text).Colour; fg.IsSet() {
		h.base = h.base.Foreground(toColor(fg))
	}
	return h
}

// Base returns the style of plain text.
func (h *Highlighter) Base() tcell.Style {
	return h.base
}

// StyleName returns the resolved chroma style name.
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// Highlight splits text into styled segments. Concatenating the segment
// texts yields text with trailing newlines removed.
func (h *Highlighter) Highlight(text string) []Segment {
	h.mu.Lock()
	if segs, ok := h.cache[text]; ok {
		h.mu.Unlock()
		return segs
	}
	h.mu.Unlock()

	segs := h.tokenize(text)

	h.mu.Lock()
	if len(h.cache) >= maxCachedTexts {
		clear(h.cache)
	}
	h.cache[text] = segs
	h.mu.Unlock()
	return segs
}

func (h *Highlighter) tokenize(text string) []Segment {
	if text == "" {
		return nil
	}
	lexer := h.lexerFor(text)
	tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, text)
	if err != nil {
		return []Segment{{Text: text, Style: h.base}}
	}

	baseColour := h.style.Get(chroma.Text).Colour
	segs := make([]Segment, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		value := strings.TrimRight(tok.Value, "\n")
		if value == "" {
			continue
		}
		segs = append(segs, Segment{Text: value, Style: h.tokenStyle(h.style.Get(tok.Type), baseColour)})
	}
	return segs
}

func (h *Highlighter) tokenStyle(entry chroma.StyleEntry, baseColour chroma.Colour) tcell.Style {
	st := h.base
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		st = st.Foreground(toColor(entry.Colour))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}

func (h *Highlighter) lexerFor(text string) chroma.Lexer {
	if h.lexer != "" {
		if l := lexers.Get(h.lexer); l != nil {
			return l
		}
	}
	if lang := DetectLanguage(text); lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// DetectLanguage guesses the language of text from a shebang or the
// go-enry classifier. It returns "" when nothing fits.
func DetectLanguage(text string) string {
	content := []byte(text)
	if lang, safe := enry.GetLanguageByShebang(content); safe && lang != "" {
		return lang
	}
	if !strings.ContainsAny(text, " \n(){}=:") {
		// Single words and numbers carry no signal.
		return ""
	}
	lang, _ := enry.GetLanguageByClassifier(content, detectCandidates)
	return lang
}

func toColor(c chroma.Colour) tcell.Color {
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}
