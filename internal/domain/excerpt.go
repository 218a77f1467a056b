package domain

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const ExcerptLength = 200

// Excerpt returns the visible text of content (which may contain HTML),
// whitespace-collapsed and cut to at most n runes on a word boundary.
func Excerpt(content string, n int) string {
	text := content
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		doc.Find("script, style").Remove()
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
