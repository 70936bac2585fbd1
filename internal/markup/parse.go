// Package markup parses vendor documentation HTML into navigable trees
// and locates tables by structural landmarks.
//
// Vendor pages get reformatted without notice, so nothing here depends
// on fixed table positions. Callers describe the section they want with
// a Hint (heading text, table class, header text, row shape, or an
// XPath expression) and receive every matching table in document order.
// Finding nothing is not an error; the caller decides whether an empty
// result is fatal.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxDocumentSize caps parsed input at 10MB to prevent memory
// exhaustion on a misbehaving page.
const MaxDocumentSize = 10 * 1024 * 1024

// Kind discriminates parse failure classes.
type Kind string

// KindMalformedInput reports input that could not be parsed into any
// document tree: empty, oversized, or structurally broken markup.
const KindMalformedInput Kind = "MALFORMED_INPUT"

// ParseError reports markup that could not be turned into a document
// tree. Unclassifiable content inside a well-formed tree is data, not a
// ParseError.
type ParseError struct {
	Kind   Kind
	Reason string
	err    error
}

func (e *ParseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("markup: %s: %s: %v", strings.ToLower(string(e.Kind)), e.Reason, e.err)
	}
	return fmt.Sprintf("markup: %s: %s", strings.ToLower(string(e.Kind)), e.Reason)
}

func (e *ParseError) Unwrap() error { return e.err }

func malformed(reason string, err error) *ParseError {
	return &ParseError{Kind: KindMalformedInput, Reason: reason, err: err}
}

// Parse builds a navigable document tree from raw page bytes.
//
// The charset is detected from the bytes themselves; pages that declare
// or use a non-UTF-8 encoding are transcoded before parsing. When
// detection or transcoding fails the bytes are parsed as-is, since the
// HTML parser is tolerant of stray bytes.
func Parse(body []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, malformed("empty document", nil)
	}
	if len(body) > MaxDocumentSize {
		return nil, malformed(fmt.Sprintf("document exceeds %d bytes", MaxDocumentSize), nil)
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(body), detectCharset(body))
	if err != nil {
		doc, derr := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if derr != nil {
			return nil, malformed("unparseable markup", derr)
		}
		return doc, nil
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, malformed("unparseable markup", err)
	}
	return doc, nil
}

// detectCharset guesses the charset of raw page bytes, defaulting to
// utf-8 when detection fails.
func detectCharset(body []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(body)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// normalizeCell trims a cell and collapses internal whitespace; vendor
// tables wrap cell text across lines.
func normalizeCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
