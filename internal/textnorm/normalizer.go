package textnorm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var (
	// URL-like tokens, matched after lowercasing. The broad \S+ tail
	// mirrors how trained models saw their input: anything glued to the
	// scheme or www prefix goes with it.
	urlPattern = regexp.MustCompile(`http\S+|www\S+`)

	nonLetterPattern  = regexp.MustCompile(`[^a-z\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalizer prepares raw email bodies for classification. The transform is
// pure, deterministic and total: any input yields a string of lowercase
// words separated by single spaces, possibly empty.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a new Normalizer
func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{
		logger: logger,
	}
}

// Normalize cleans raw text in fixed order: strip markup, lowercase, drop
// URLs, drop every character outside lowercase letters and whitespace, then
// collapse runs of whitespace. Markup stripping has to come first; once the
// character filter has run, tag syntax is gone and markup could no longer
// be told apart from text.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := stripMarkup(raw)
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = nonLetterPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// stripMarkup extracts the visible text from HTML-ish input. Plain text
// passes through unchanged; unparsable input falls back to the raw string.
func stripMarkup(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return doc.Text()
}
