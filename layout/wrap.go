package layout

import (
	"math"
	"strings"
	"unicode"

	"github.com/dgtlunion/konspekt/summary"
)

// Measure returns the advance width of text in points for the given weight.
type Measure func(text string, bold bool) float64

type token struct {
	text  string
	bold  bool
	space bool
}

// WrapRuns greedily breaks runs into lines no wider than width, preferring
// whitespace and splitting inside a word only when the word alone is too wide.
// Leading whitespace of wrapped lines and trailing whitespace of every line
// are dropped. Every line gets lineHeight; an empty input yields one empty line.
func WrapRuns(runs []summary.Run, width, lineHeight float64, measure Measure) []TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var (
		lines        []TextLine
		spans        []Span
		currentWidth float64
	)

	emit := func(force bool) {
		spans, currentWidth = trimTrailingSpace(spans, measure)
		if len(spans) == 0 && !force {
			return
		}
		lines = append(lines, TextLine{Spans: spans, Width: currentWidth, Height: lineHeight})
		spans = nil
		currentWidth = 0
	}

	appendText := func(text string, bold bool, w float64) {
		if n := len(spans); n > 0 && spans[n-1].Bold == bold {
			spans[n-1].Text += text
			spans[n-1].Width += w
		} else {
			spans = append(spans, Span{Text: text, Bold: bold, X: currentWidth, Width: w})
		}
		currentWidth += w
	}

	for _, tok := range tokenizeRuns(runs) {
		if tok.text == "\n" {
			emit(true)
			continue
		}
		if tok.space && len(spans) == 0 && len(lines) > 0 {
			continue
		}

		w := measure(tok.text, tok.bold)
		if currentWidth > 0 && currentWidth+w > limit {
			emit(false)
			if tok.space {
				continue
			}
		}
		if w <= limit {
			appendText(tok.text, tok.bold, w)
			continue
		}
		for _, chunk := range splitTokenByWidth(tok.text, tok.bold, limit, measure) {
			cw := measure(chunk, tok.bold)
			if currentWidth > 0 && currentWidth+cw > limit {
				emit(false)
			}
			appendText(chunk, tok.bold, cw)
		}
	}
	emit(len(lines) == 0)
	return lines
}

func trimTrailingSpace(spans []Span, measure Measure) ([]Span, float64) {
	for len(spans) > 0 {
		last := &spans[len(spans)-1]
		trimmed := strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if trimmed == last.Text {
			break
		}
		if trimmed == "" {
			spans = spans[:len(spans)-1]
			continue
		}
		last.Text = trimmed
		last.Width = measure(trimmed, last.Bold)
		break
	}
	if len(spans) == 0 {
		return nil, 0
	}
	last := spans[len(spans)-1]
	return spans, last.X + last.Width
}

// tokenizeRuns splits every run into alternating word and whitespace tokens.
// Explicit newlines become their own tokens.
func tokenizeRuns(runs []summary.Run) []token {
	var tokens []token
	for _, run := range runs {
		var builder strings.Builder
		lastWasSpace := false
		flush := func() {
			if builder.Len() == 0 {
				return
			}
			tokens = append(tokens, token{text: builder.String(), bold: run.Bold, space: lastWasSpace})
			builder.Reset()
		}
		for _, r := range run.Text {
			if r == '\r' {
				continue
			}
			if r == '\n' {
				flush()
				tokens = append(tokens, token{text: "\n", bold: run.Bold})
				lastWasSpace = false
				continue
			}
			isSpace := unicode.IsSpace(r)
			if builder.Len() == 0 {
				lastWasSpace = isSpace
			} else if lastWasSpace != isSpace {
				flush()
				lastWasSpace = isSpace
			}
			builder.WriteRune(r)
		}
		flush()
	}
	return tokens
}

func splitTokenByWidth(text string, bold bool, limit float64, measure Measure) []string {
	var parts []string
	var builder strings.Builder
	for _, r := range text {
		builder.WriteRune(r)
		if measure(builder.String(), bold) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			if len(runes) > 1 {
				parts = append(parts, string(runes[:len(runes)-1]))
				builder.Reset()
				builder.WriteRune(r)
			}
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
