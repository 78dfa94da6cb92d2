package ddns

import (
	"fmt"
	"net/url"
	"strings"
)

const namecheapEndpoint = "https://dynamicdns.park-your-domain.com/update"

// Namecheap returns the update template for a Namecheap dynamic DNS host.
// The apex of a two-label domain is updated as host "@".
func Namecheap(domain, password string) (string, error) {
	labels := strings.Split(strings.TrimSuffix(domain, "."), ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("invalid domain %q", domain)
	}
	for _, l := range labels {
		if l == "" {
			return "", fmt.Errorf("invalid domain %q", domain)
		}
	}
	if password == "" {
		return "", fmt.Errorf("namecheap dynamic dns password is required")
	}

	host := "@"
	if len(labels) > 2 {
		host = strings.Join(labels[:len(labels)-2], ".")
	}
	q := url.Values{}
	q.Set("host", host)
	q.Set("domain", strings.Join(labels[len(labels)-2:], "."))
	q.Set("password", password)
	// The placeholder is appended verbatim so Render finds it.
	return namecheapEndpoint + "?" + q.Encode() + "&ip=" + Placeholder, nil
}
