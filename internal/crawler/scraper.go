package crawler

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"

	"github.com/nao1215/crawlsearch/internal/model"
)

// repeatedSpaceRegex matches runs of whitespace.
var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// strictPolicyPool reuses bluemonday strict policies; building one is not free.
var strictPolicyPool = sync.Pool{
	New: func() any {
		return bluemonday.StrictPolicy()
	},
}

// Scraper turns a fetched HTML document into a model.Page.
// It is stateless and safe for concurrent use.
type Scraper struct{}

// NewScraper creates a Scraper.
func NewScraper() *Scraper {
	return &Scraper{}
}

// Scrape extracts the title, meta description, visible text and raw
// anchor hrefs from body. Links are returned unfiltered, in document order.
func (s *Scraper) Scrape(pageURL string, body []byte) (*model.Page, error) {
	doc, err := xhtml.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, pageURL, err)
	}

	page := &model.Page{
		URL:   pageURL,
		Links: make([]string, 0),
	}

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			switch n.Data {
			case "title":
				if page.Title == "" {
					page.Title = strings.TrimSpace(nodeText(n))
				}
			case "meta":
				if page.Description == "" && strings.EqualFold(getAttr(n, "name"), "description") {
					page.Description = strings.TrimSpace(getAttr(n, "content"))
				}
			case "a":
				if href, ok := lookupAttr(n, "href"); ok {
					page.Links = append(page.Links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	page.BodyText = ExtractText(body)
	return page, nil
}

// ExtractText strips all markup from an HTML document and collapses
// whitespace. Script and style contents are dropped.
func ExtractText(body []byte) string {
	policy, ok := strictPolicyPool.Get().(*bluemonday.Policy)
	if !ok {
		policy = bluemonday.StrictPolicy()
	}
	defer strictPolicyPool.Put(policy)

	text := policy.SanitizeBytes(body)
	plain := html.UnescapeString(string(text))
	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(plain, " "))
}

// nodeText concatenates the text children of n.
func nodeText(n *xhtml.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *xhtml.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *xhtml.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
