package rss

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_plainText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Hello world", plainText("<p>Hello   <b>world</b></p>"))
	require.Equal(t, "a b", plainText("  a \n\t b "))
	require.Equal(t, "Tom & Jerry", plainText("Tom &amp; Jerry"))
	require.Equal(t, "text", plainText("<script>alert(1)</script><div>text</div>"))
	require.Equal(t, "", plainText(""))
}
