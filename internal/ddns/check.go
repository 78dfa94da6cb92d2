package ddns

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// DefaultDNSServer is queried by Check when no server is given.
const DefaultDNSServer = "1.1.1.1:53"

// Check asks server for the A and AAAA records of domain and returns the
// addresses in answer order, A records first.
func Check(ctx context.Context, domain, server string) ([]string, error) {
	if server == "" {
		server = DefaultDNSServer
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	client := new(dns.Client)
	var out []string
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(domain), qtype)
		msg.RecursionDesired = true

		resp, _, err := client.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, fmt.Errorf("query %s %s at %s: %w", dns.TypeToString[qtype], domain, server, err)
		}
		if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
			return nil, fmt.Errorf("query %s %s at %s: %s", dns.TypeToString[qtype], domain, server, dns.RcodeToString[resp.Rcode])
		}
		for _, rr := range resp.Answer {
			switch r := rr.(type) {
			case *dns.A:
				out = append(out, r.A.String())
			case *dns.AAAA:
				out = append(out, r.AAAA.String())
			}
		}
	}
	return out, nil
}
