package config

import (
	"maps"
	"strings"

	"github.com/nao1215/crawlsearch/internal/linkfilter"
)

// SiteConfig holds crawl settings for one host.
type SiteConfig struct {
	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie to use when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page limit for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Filter adds denylist entries for this site on top of the global rules.
	Filter *linkfilter.Rules `yaml:"filter,omitempty"`
}

// File represents the structure of the .crawlsearch configuration file.
type File struct {
	// Filter replaces the built-in link filter denylists when set.
	Filter *linkfilter.Rules `yaml:"filter,omitempty"`

	// Sites maps host names to their site-specific configurations.
	// Keys are host names without scheme or port (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host merged over the defaults.
// A nil File yields the zero SiteConfig.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	siteConfig, ok := cf.Sites[strings.ToLower(host)]
	if !ok {
		return result
	}

	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if siteConfig.Filter != nil {
		if result.Filter == nil {
			result.Filter = siteConfig.Filter
		} else {
			merged := result.Filter.Merge(*siteConfig.Filter)
			result.Filter = &merged
		}
	}

	return result
}

// FilterRules returns the link filter rules for host: the file's global
// rules (or the built-in ones) extended by the defaults and the site's own
// entries. A nil File yields linkfilter.DefaultRules.
func (cf *File) FilterRules(host string) linkfilter.Rules {
	rules := linkfilter.DefaultRules()
	if cf == nil {
		return rules
	}
	if cf.Filter != nil {
		rules = *cf.Filter
	}
	if site := cf.GetSiteConfig(host); site.Filter != nil {
		rules = rules.Merge(*site.Filter)
	}
	return rules
}
