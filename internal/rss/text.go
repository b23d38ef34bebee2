package rss

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// plainText снимает HTML-разметку и схлопывает пробелы.
// Невалидный HTML goquery разбирает «как есть», поэтому ошибки здесь редки;
// в этом случае возвращается исходная строка без лишних пробелов.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpaces(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpaces(s)
	}

	doc.Find("script, style").Remove()

	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
