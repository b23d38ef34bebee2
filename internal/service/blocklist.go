package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/pulse-reader/internal/models"
)

const (
	maxBlocklistTerms   = 100
	maxBlocklistTermLen = 100
)

// normalizeBlocklist обрезает, переводит в нижний регистр и убирает дубликаты.
// Пустые термины отбрасываются. Нарушения лимитов копятся в verr.
func normalizeBlocklist(terms []string, verr *ValidationError) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))

	for i, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}

		if utf8.RuneCountInString(term) > maxBlocklistTermLen {
			verr.add(fmt.Sprintf("blocklist[%d]", i), fmt.Sprintf("must be at most %d characters", maxBlocklistTermLen))
			continue
		}

		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	if len(out) > maxBlocklistTerms {
		verr.add("blocklist", fmt.Sprintf("must contain at most %d terms", maxBlocklistTerms))
	}

	return out
}

// blocklist — термины в нижнем регистре.
type blocklist []string

func newBlocklist(terms []string) blocklist {
	b := make(blocklist, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			b = append(b, t)
		}
	}

	return b
}

// blocks сообщает, содержит ли заголовок, описание или ссылка хотя бы один термин.
func (b blocklist) blocks(a models.Article) bool {
	if len(b) == 0 {
		return false
	}

	title := strings.ToLower(a.Title)
	desc := strings.ToLower(a.Description)
	link := strings.ToLower(a.Link)

	for _, term := range b {
		if strings.Contains(title, term) || strings.Contains(desc, term) || strings.Contains(link, term) {
			return true
		}
	}

	return false
}
