package linkfilter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidOrigin is returned by NormalizeOrigin when the input cannot be
// turned into an absolute http(s) URL with a host.
var ErrInvalidOrigin = errors.New("invalid origin URL")

// Filter decides whether rawHref, found on the page at pageURL, should be
// crawled. originHost is the host the crawl is confined to; a port, if any,
// is ignored when comparing hosts.
//
// The checks run in a fixed order: empty or root links, fragment-only links,
// banned schemes, banned extensions, banned segments and banned suffixes.
// Survivors lose their fragment and query, are expanded against pageURL,
// must stay on originHost and are upgraded to https.
func Filter(rawHref, pageURL, originHost string, rules Rules) (string, bool) {
	link := strings.TrimSpace(rawHref)
	if link == "" || link == "/" {
		return "", false
	}
	if strings.HasPrefix(link, "#") {
		return "", false
	}
	lower := strings.ToLower(link)
	for _, scheme := range rules.BannedSchemes {
		if strings.HasPrefix(lower, strings.ToLower(scheme)) {
			return "", false
		}
	}

	trimmed := stripQueryAndFragment(link)
	if denied(link, trimmed, rules) {
		return "", false
	}
	if trimmed == "" {
		return "", false
	}

	page, err := url.Parse(pageURL)
	if err != nil || page.Host == "" {
		return "", false
	}

	var absolute string
	switch {
	case strings.HasPrefix(trimmed, "//"):
		absolute = "https:" + trimmed
	case hasScheme(trimmed):
		absolute = trimmed
	case strings.HasPrefix(trimmed, "/"):
		absolute = page.Scheme + "://" + page.Host + trimmed
	default:
		absolute = page.Scheme + "://" + page.Host + strings.TrimRight(page.EscapedPath(), "/") + "/" + trimmed
	}

	u, err := url.Parse(absolute)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Hostname(), hostnameOf(originHost)) {
		return "", false
	}

	u.Scheme = "https"
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	u.ForceQuery = false

	out := u.String()
	// Expansion can join the page path and a bare link into a banned path.
	if denied(out, u.EscapedPath(), rules) {
		return "", false
	}
	return out, true
}

// NormalizeOrigin turns user input such as "example.com" or
// "https://example.com" into the canonical origin URL a crawl starts from.
// A missing scheme defaults to https and an empty path becomes "/".
func NormalizeOrigin(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidOrigin)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidOrigin, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidOrigin, raw)
	}

	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// Hostname returns the lower-cased host of rawURL without its port.
// It returns an empty string when rawURL cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// denied applies the extension, segment and suffix denylists.
// link is matched for segments; path is the query-free part used for
// extension and suffix checks.
func denied(link, path string, rules Rules) bool {
	if hasBannedExtension(path, rules.BannedExtensions) {
		return true
	}
	for _, segment := range rules.BannedSegments {
		if segment != "" && strings.Contains(link, segment) {
			return true
		}
	}
	for _, suffix := range rules.BannedSuffixes {
		if suffix != "" && strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func hasBannedExtension(path string, extensions []string) bool {
	last := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(last, ".")
	if dot < 0 {
		return false
	}
	ext := strings.ToLower(last[dot+1:])
	for _, banned := range extensions {
		if strings.EqualFold(ext, strings.TrimPrefix(banned, ".")) {
			return true
		}
	}
	return false
}

func stripQueryAndFragment(link string) string {
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[:i]
	}
	return link
}

// hasScheme reports whether link starts with "scheme://".
func hasScheme(link string) bool {
	i := strings.Index(link, "://")
	if i <= 0 {
		return false
	}
	for _, r := range link[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func hostnameOf(host string) string {
	if strings.Contains(host, "://") {
		return Hostname(host)
	}
	return strings.ToLower((&url.URL{Host: host}).Hostname())
}
