package extract

import (
	"net/url"
	"strings"
)

// jsonSuffixes are the query suffixes that ask the upstream for the JSON
// API rendition of a post page, in preference order.
var jsonSuffixes = []string{
	"?__a=1&__d=dis",
	"?__a=1",
}

// altSubdomains are host prefixes known to serve the same content: the
// API-only host and the mobile host.
var altSubdomains = []string{"i", "m"}

// BaseURL strips the query string (tracking parameters) from a post URL.
func BaseURL(rawURL string) string {
	if i := strings.Index(rawURL, "?"); i != -1 {
		return rawURL[:i]
	}
	return rawURL
}

// Variants builds the ordered list of URL forms the cascade will attempt:
// the JSON-API suffixed forms, the bare base, then the base on each
// alternate subdomain. Order matters; the first variant that yields media
// short-circuits the rest.
func Variants(rawURL string) []string {
	base := BaseURL(rawURL)
	out := make([]string, 0, len(jsonSuffixes)+1+len(altSubdomains))
	for _, suffix := range jsonSuffixes {
		out = append(out, base+suffix)
	}
	out = append(out, base)
	for _, sub := range altSubdomains {
		if swapped, ok := swapSubdomain(base, sub); ok {
			out = append(out, swapped)
		}
	}
	return out
}

func swapSubdomain(rawURL, sub string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := u.Host
	for _, prefix := range append([]string{"www"}, altSubdomains...) {
		if strings.HasPrefix(host, prefix+".") {
			host = strings.TrimPrefix(host, prefix+".")
			break
		}
	}
	swapped := sub + "." + host
	if swapped == u.Host {
		return "", false
	}
	u.Host = swapped
	return u.String(), true
}
