package session

import (
	"net/url"
	"strings"
)

// ResolveRedirect returns where to send the browser after a sign-in or sign-out.
// Root-relative paths are prefixed with baseURL, absolute URLs on the same origin
// pass through, and anything else falls back to baseURL.
func ResolveRedirect(target, baseURL string) string {
	if strings.HasPrefix(target, "/") {
		return baseURL + target
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return baseURL
	}
	if origin(u) == baseURL {
		return target
	}
	return baseURL
}

// origin serialises u the way browsers do: lower case scheme and host, default port dropped.
func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host += ":" + port
	}
	return scheme + "://" + host
}
