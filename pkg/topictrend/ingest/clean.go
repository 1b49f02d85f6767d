// Package ingest prepares raw review text for topic extraction: HTML and
// emoji removal, whitespace folding and phrase normalization.
package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// CleanText lowercases text, strips markup, replaces emoji with spaces and
// folds all whitespace runs (including repeated newlines) into one space.
func CleanText(text string) string {
	if strings.ContainsRune(text, '<') {
		text = StripHTML(text)
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if isEmoji(r) || unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// StripHTML returns the text content of s. Block boundaries are not
// preserved; callers fold whitespace afterwards.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

// isEmoji reports whether r falls in the pictograph, dingbat, flag or
// variation-selector ranges.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF, // symbols & pictographs
		r >= 0x1F600 && r <= 0x1F64F, // emoticons
		r >= 0x1F680 && r <= 0x1F6FF, // transport & map
		r >= 0x1F1E0 && r <= 0x1F1FF, // flags
		r >= 0x1F900 && r <= 0x1F9FF, // supplemental symbols
		r >= 0x1FA70 && r <= 0x1FAFF, // symbols extended-A
		r >= 0x2600 && r <= 0x26FF, // misc symbols
		r >= 0x2700 && r <= 0x27BF, // dingbats
		r == 0x200D, // zero width joiner
		r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	}
	return false
}
