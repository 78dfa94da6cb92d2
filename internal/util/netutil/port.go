// Package netutil holds the ingress port model and a TCP readiness probe.
package netutil

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Protocols accepted in a Port.
const (
	TCP = "tcp"
	UDP = "udp"
)

// Port is one allowed ingress (protocol, port) pair.
type Port struct {
	Protocol string `json:"protocol" yaml:"protocol" mapstructure:"protocol"`
	Number   int    `json:"port" yaml:"port" mapstructure:"port"`
}

// Token renders the port as used in firewall names, e.g. "tcp22".
func (p Port) Token() string {
	return p.Protocol + strconv.Itoa(p.Number)
}

// String renders the port as "tcp/22".
func (p Port) String() string {
	return p.Protocol + "/" + strconv.Itoa(p.Number)
}

// Validate checks protocol and range.
func (p Port) Validate() error {
	if p.Protocol != TCP && p.Protocol != UDP {
		return fmt.Errorf("unsupported protocol %q (want tcp or udp)", p.Protocol)
	}
	if p.Number < 1 || p.Number > 65535 {
		return fmt.Errorf("port %d out of range", p.Number)
	}
	return nil
}

// ParsePort parses "tcp/22", "udp:25565" or a bare "22" (tcp).
func ParsePort(s string) (Port, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	proto, num := TCP, s
	if i := strings.IndexAny(s, "/:"); i >= 0 {
		proto, num = s[:i], s[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Port{}, fmt.Errorf("invalid port %q: %w", s, err)
	}
	p := Port{Protocol: proto, Number: n}
	if err := p.Validate(); err != nil {
		return Port{}, err
	}
	return p, nil
}

// SortPorts returns a sorted, de-duplicated copy ordered by protocol then number.
func SortPorts(ports []Port) []Port {
	out := slices.Clone(ports)
	slices.SortFunc(out, func(a, b Port) int {
		if c := strings.Compare(a.Protocol, b.Protocol); c != 0 {
			return c
		}
		return a.Number - b.Number
	})
	return slices.Compact(out)
}

// Tokens returns the tokens of the sorted port set.
func Tokens(ports []Port) []string {
	sorted := SortPorts(ports)
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = p.Token()
	}
	return out
}

// WaitForPort waits for a TCP port to be open on the target IP.
// It retries every second until the port is accessible or the timeout is reached.
func WaitForPort(ctx context.Context, ip string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(ip, strconv.Itoa(port))
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := net.Dialer{Timeout: 2 * time.Second}
	try := func() bool {
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}

	if try() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
			if try() {
				return nil
			}
		}
	}
}
