// Package content turns the rich-text editor's HTML into the plain text the
// blog stores, and normalises image references.
package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// UploadsPrefix is the public path uploaded images are served under.
const UploadsPrefix = "/uploads/"

// StripHTML removes every tag, turning paragraph ends into newlines.
// Entities are kept escaped so the result is still safe to render as HTML.
func StripHTML(s string) string {
	text, _ := scan(s)
	return text
}

// IsEmpty reports whether the editor produced nothing worth saving: no
// visible text and no image.
func IsEmpty(s string) bool {
	text, hasImage := scan(s)
	return strings.TrimSpace(html.UnescapeString(text)) == "" && !hasImage
}

func scan(s string) (string, bool) {
	var (
		b        strings.Builder
		hasImage bool
	)

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce
			return b.String(), hasImage
		case html.TextToken:
			b.Write(z.Raw())
		case html.EndTagToken:
			if name, _ := z.TagName(); atom.Lookup(name) == atom.P {
				b.WriteByte('\n')
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); atom.Lookup(name) == atom.Img {
				hasImage = true
			}
		}
	}
}

// NormalizeImageURL maps a cover or avatar reference onto something the
// frontend can load. Absolute http(s) URLs and paths already under /uploads/
// pass through; anything else is treated as a file name inside /uploads/.
// An empty reference stays empty.
func NormalizeImageURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, UploadsPrefix):
		return ref
	default:
		return UploadsPrefix + strings.TrimLeft(ref, "/")
	}
}
