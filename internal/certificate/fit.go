package certificate

import (
	"strings"
	"unicode/utf8"
)

const (
	// textPadding keeps text clear of the border.
	textPadding = 20
	// ContentWidth is the widest a line of text may be drawn.
	ContentWidth = PageWidth - 2*borderInset - 2*textPadding
	minFontSize  = 9
	lineSpacing  = 1.2
	ellipsis     = "..."
)

// MeasureFunc returns the width of text set at size.
type MeasureFunc func(text string, size float64) (float64, error)

// Fitted is a line shrunk and, if needed, wrapped to fit ContentWidth.
type Fitted struct {
	Size  float64
	Lines []string
}

// Fit shrinks text from size down to the minimum font size until it fits in
// maxWidth. Text still too wide at the minimum is word-wrapped onto at most
// maxLines lines, the last one cut short with an ellipsis.
func Fit(text string, size, maxWidth float64, maxLines int, measure MeasureFunc) (Fitted, error) {
	floor := float64(minFontSize)
	if size < floor {
		floor = size
	}
	for s := size; s >= floor; s-- {
		w, err := measure(text, s)
		if err != nil {
			return Fitted{}, err
		}
		if w <= maxWidth {
			return Fitted{Size: s, Lines: []string{text}}, nil
		}
	}

	fits := func(s string) (bool, error) {
		w, err := measure(s, floor)
		return w <= maxWidth, err
	}

	if maxLines < 1 {
		maxLines = 1
	}
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		ok, err := fits(candidate)
		if err != nil {
			return Fitted{}, err
		}
		if ok {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		// A single word wider than the page is broken by rune.
		current, lines, err = breakWord(word, lines, fits)
		if err != nil {
			return Fitted{}, err
		}
	}
	if current != "" {
		lines = append(lines, current)
	}

	if len(lines) > maxLines {
		last, err := truncate(strings.Join(lines[maxLines-1:], " "), fits)
		if err != nil {
			return Fitted{}, err
		}
		lines = append(lines[:maxLines-1], last)
	}
	return Fitted{Size: floor, Lines: lines}, nil
}

func breakWord(word string, lines []string, fits func(string) (bool, error)) (string, []string, error) {
	ok, err := fits(word)
	if err != nil || ok {
		return word, lines, err
	}
	part := ""
	for _, r := range word {
		next := part + string(r)
		ok, err := fits(next)
		if err != nil {
			return "", nil, err
		}
		if !ok && part != "" {
			lines = append(lines, part)
			next = string(r)
		}
		part = next
	}
	return part, lines, nil
}

func truncate(text string, fits func(string) (bool, error)) (string, error) {
	for text != "" {
		ok, err := fits(text + ellipsis)
		if err != nil {
			return "", err
		}
		if ok {
			return text + ellipsis, nil
		}
		_, n := utf8.DecodeLastRuneInString(text)
		text = strings.TrimRight(text[:len(text)-n], " ")
	}
	return ellipsis, nil
}

// linesAvailable is how many lines at the minimum size fit between y and next.
func linesAvailable(y, next float64) int {
	n := int((next - y) / (minFontSize * lineSpacing))
	if n < 1 {
		return 1
	}
	return n
}
