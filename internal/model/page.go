package model

import (
	"mime"
	"strings"
	"unicode/utf8"
)

// MaxBodyTextSize is the maximum size of the stored body text in bytes.
const MaxBodyTextSize = 1024 * 1024 // 1 MB

// Page is the result of scraping one fetched HTML document.
type Page struct {
	// URL is the canonical URL the page was fetched from.
	URL string `json:"url"`

	// Title is the text of the <title> element.
	Title string `json:"title"`

	// Description is the content of <meta name="description">.
	// Empty when the page has none.
	Description string `json:"description,omitempty"`

	// BodyText is the visible text of the document with markup removed
	// and whitespace collapsed.
	BodyText string `json:"body_text"`

	// Links holds every raw href found in <a> elements, in document order.
	// The values are unfiltered; see package linkfilter.
	Links []string `json:"links,omitempty"`
}

// Record converts the scraped page into the row stored in a corpus.
func (p *Page) Record() *PageRecord {
	r := &PageRecord{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		BodyText:    p.BodyText,
	}
	r.TruncateBody()
	return r
}

// PageRecord is one row of a corpus.
// A URL appears at most once per corpus.
type PageRecord struct {
	URL         string `json:"url" csv:"url"`
	Title       string `json:"title" csv:"title"`
	Description string `json:"description" csv:"description"`
	BodyText    string `json:"body_text" csv:"body_text"`
}

// TruncateBody cuts BodyText to MaxBodyTextSize without splitting a UTF-8 sequence.
func (r *PageRecord) TruncateBody() {
	if len(r.BodyText) <= MaxBodyTextSize {
		return
	}
	cut := MaxBodyTextSize
	for cut > 0 && !utf8.RuneStart(r.BodyText[cut]) {
		cut--
	}
	r.BodyText = r.BodyText[:cut]
}

// IsHTML reports whether a Content-Type header value denotes an HTML document.
// An empty content type is treated as HTML.
func IsHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
