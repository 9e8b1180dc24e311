package collect

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	// WHAT: Two surface forms of the same article map to one key.
	cases := []struct {
		name, in, want string
	}{
		{"lowercase host", "https://News.Example/Story", "https://news.example/Story"},
		{"drop fragment", "https://news.example/story#section-2", "https://news.example/story"},
		{"drop trailing slash", "https://news.example/story/", "https://news.example/story"},
		{"strip tracking", "https://news.example/story?utm_source=x&utm_medium=y&fbclid=abc", "https://news.example/story"},
		{"keep and sort real params", "https://news.example/story?page=2&id=7", "https://news.example/story?id=7&page=2"},
		{"mixed params", "https://news.example/story?utm_campaign=z&id=7", "https://news.example/story?id=7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL(tc.in)
			if err != nil {
				t.Fatalf("NormalizeURL(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "ftp://files.example/x", "not a url at all://", "https:///nohost"} {
		if _, err := NormalizeURL(in); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("NormalizeURL(%q): got %v, want ErrInvalidURL", in, err)
		}
	}
}

func TestSeenSet(t *testing.T) {
	// WHAT: Membership is checked on the normalised form, so tracking-tag
	// variants of a seen URL count as seen.
	s := NewSeenSet([]string{"https://news.example/a?utm_source=feed"})
	if !s.Has("https://news.example/a") {
		t.Error("normalised variant not found")
	}
	s.Add("https://news.example/b/")
	s.Add("https://news.example/b")
	if s.Len() != 2 {
		t.Errorf("len: got %d, want 2", s.Len())
	}
}
