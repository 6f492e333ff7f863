// Package extract turns fetched document content into word tokens. HTML is
// reduced to its visible text first: script, style and other non-content
// elements are skipped entirely.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/tailored-agentic-units/wordcount/document"
)

var ErrUnsupportedMediaType = errors.New("unsupported media type")

var nonContent = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Object:   true,
}

// Tokenizer extracts text fragments and splits them on whitespace. The zero
// value is ready to use and safe for concurrent use.
type Tokenizer struct{}

func New() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize returns the whitespace-delimited tokens of the content, in
// document order. Empty tokens never appear; case is preserved.
func (t *Tokenizer) Tokenize(content document.Content) ([]string, error) {
	fragments, err := t.Fragments(content)
	if err != nil {
		return nil, err
	}
	return Fields(fragments), nil
}

// Fragments returns the text nodes of the content. Media type comes from
// the Content-Type header, or is sniffed from the body when absent.
func (t *Tokenizer) Fragments(content document.Content) ([]string, error) {
	contentType := content.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(content.Body)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}

	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return htmlFragments(content.Body, contentType)
	case strings.HasPrefix(mediaType, "text/"):
		return textFragments(content.Body, contentType)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// Fields splits each fragment on whitespace.
func Fields(fragments []string) []string {
	var tokens []string
	for _, fragment := range fragments {
		tokens = append(tokens, strings.Fields(fragment)...)
	}
	return tokens
}

func htmlFragments(body []byte, contentType string) ([]string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode html: %w", err)
	}

	var fragments []string
	skipDepth := 0
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return fragments, nil
			}
			return nil, fmt.Errorf("failed to parse html: %w", z.Err())
		case html.StartTagToken:
			if nonContent[tagAtom(z)] {
				skipDepth++
			}
		case html.EndTagToken:
			if nonContent[tagAtom(z)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := strings.TrimSpace(string(z.Text())); text != "" {
				fragments = append(fragments, text)
			}
		}
	}
}

func textFragments(body []byte, contentType string) ([]string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}

	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}

	if text := strings.TrimSpace(string(decoded)); text != "" {
		return []string{text}, nil
	}
	return nil, nil
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}
