package rss

import (
	"net/url"
	"strings"
)

// canonicalLink нормализует ссылку: убирает фрагмент и трекинг-параметры.
// Если link пуст, используется guid, когда он сам является http(s)-адресом.
// Не-http(s) ссылки отбрасываются.
func canonicalLink(raw, guid string) string {
	str := strings.TrimSpace(raw)
	if str == "" {
		if g := strings.TrimSpace(guid); strings.HasPrefix(g, "http://") || strings.HasPrefix(g, "https://") {
			str = g
		}
	}

	if str == "" {
		return ""
	}

	u, err := url.Parse(str)
	if err != nil {
		return ""
	}

	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return ""
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)

	u.RawQuery = stripTracking(u.RawQuery)

	return u.String()
}

// stripTracking убирает трекинг-параметры из сырой строки запроса.
// Остальные пары сохраняются байт в байт и в исходном порядке: часть лент
// кладёт в query значения, которые не переживают разбор и повторное кодирование.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if isTrackingKey(strings.ToLower(key)) {
			continue
		}
		kept = append(kept, pair)
	}

	return strings.Join(kept, "&")
}

func isTrackingKey(k string) bool {
	return strings.HasPrefix(k, "utm_") ||
		strings.HasSuffix(k, "clid") ||
		strings.HasPrefix(k, "mc_") ||
		k == "igshid"
}
