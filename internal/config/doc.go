// Package config provides the configuration of crawlsearch: the flat Config
// populated from CLI flags, its defaults and validation, and the optional
// .crawlsearch YAML file holding link filter rules and per-site settings.
package config
