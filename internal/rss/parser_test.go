package rss

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mkRSS — собирает минимальный RSS 2.0 документ.
func mkRSS(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>feed</title>
    ` + strings.Join(items, "\n") + `
  </channel>
</rss>`
}

func mkItem(title, link, pubDate, description string) string {
	var b strings.Builder
	b.WriteString("<item>\n")
	if title != "" {
		b.WriteString(fmt.Sprintf("<title>%s</title>\n", title))
	}
	if link != "" {
		b.WriteString(fmt.Sprintf("<link>%s</link>\n", link))
	}
	if pubDate != "" {
		b.WriteString(fmt.Sprintf("<pubDate>%s</pubDate>\n", pubDate))
	}
	if description != "" {
		b.WriteString(fmt.Sprintf("<description><![CDATA[%s]]></description>\n", description))
	}
	b.WriteString("</item>")
	return b.String()
}

func TestParse_RSS_NormalizesItems(t *testing.T) {
	t.Parallel()

	doc := mkRSS(
		mkItem("First", "https://example.org/a?utm_source=x&id=1#top", "Mon, 02 Jan 2006 15:04:05 -0700", "<p>Hello <b>world</b></p>"),
		mkItem("", "https://example.org/no-title", "", ""),
		mkItem("No link", "", "", ""),
		mkItem("Second", "https://example.org/b", "", ""),
	)

	items, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, items, 2, "items without title or link are skipped")

	require.Equal(t, "First", items[0].Title)
	require.Equal(t, "https://example.org/a?id=1", items[0].Link)
	require.Equal(t, "Hello world", items[0].Description)
	require.Equal(t, time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), items[0].PublishedAt)

	require.Equal(t, "Second", items[1].Title)
	require.True(t, items[1].PublishedAt.IsZero(), "missing date stays zero for the orchestrator")
}

func TestParse_RSS_GUIDFallback(t *testing.T) {
	t.Parallel()

	doc := mkRSS(`<item><title>T</title><guid isPermaLink="true">https://example.org/guid#frag</guid></item>`)

	items, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "https://example.org/guid", items[0].Link)
}

func TestParse_Atom(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>atom</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://example.org/atom/1"/>
    <id>urn:uuid:1</id>
    <updated>2024-03-01T10:00:00Z</updated>
    <summary>Plain summary</summary>
  </entry>
</feed>`

	items, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Atom entry", items[0].Title)
	require.Equal(t, "https://example.org/atom/1", items[0].Link)
	require.Equal(t, "Plain summary", items[0].Description)
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), items[0].PublishedAt)
}

func TestParse_EmptyFeed_NoError(t *testing.T) {
	t.Parallel()

	items, err := NewParser().Parse([]byte(mkRSS()))
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestParse_Garbage_ErrParse(t *testing.T) {
	t.Parallel()

	_, err := NewParser().Parse([]byte("definitely not a feed"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrParse))
}
