package rss

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_canonicalLink(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		guid string
		want string
	}{
		{"strip tracking", "https://Example.org/a?utm_medium=rss&fbclid=1&mc_eid=2&igshid=3&page=2", "", "https://example.org/a?page=2"},
		{"keeps order and escaping", "https://example.org/s?z=1&q=a%2Fb+c&utm_source=x&a=%7E", "", "https://example.org/s?z=1&q=a%2Fb+c&a=%7E"},
		{"keeps malformed pairs", "https://example.org/s?x=%zz&gclid=9&flag", "", "https://example.org/s?x=%zz&flag"},
		{"escaped tracking key", "https://example.org/s?UTM%5FCampaign=spring&id=7", "", "https://example.org/s?id=7"},
		{"only tracking", "https://example.org/s?utm_source=rss", "", "https://example.org/s"},
		{"strip fragment", "http://example.org/a#comments", "", "http://example.org/a"},
		{"trim spaces", "  https://example.org/a  ", "", "https://example.org/a"},
		{"guid fallback", "", "https://example.org/g", "https://example.org/g"},
		{"guid not url", "", "tag:example.org,2024:1", ""},
		{"non http scheme", "ftp://example.org/file", "", ""},
		{"relative", "/path/only", "", ""},
		{"empty", "", "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, canonicalLink(tc.raw, tc.guid))
		})
	}
}
