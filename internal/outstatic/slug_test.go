package outstatic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Great Post", "my-great-post"},
		{"AI: What's Next?", "ai-what-s-next"},
		{"  spaced   out  ", "spaced-out"},
		{"Déjà Vu in Tech", "deja-vu-in-tech"},
		{"already-hyphenated", "already-hyphenated"},
		{"!!!", "untitled"},
		{"", "untitled"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestStorageKey(t *testing.T) {
	now := time.Unix(1756200000, 0)
	require.Equal(t, "images/my-great-post-1756200000.png", StorageKey("My Great Post", now))
}
