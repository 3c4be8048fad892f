package deeplink

import (
	"net/url"
	"strings"
)

// IsSchemeURL reports whether s is a well-formed URL of the given scheme.
func IsSchemeURL(s, scheme string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, scheme)
}

// FilterSchemeURLs returns the arguments that are well-formed URLs of the
// scheme, preserving argument order. Everything else — flags, paths, free
// text — is ignored.
func FilterSchemeURLs(args []string, scheme string) []string {
	var urls []string
	for _, arg := range args {
		if IsSchemeURL(arg, scheme) {
			urls = append(urls, arg)
		}
	}
	return urls
}
