package interceptors

import (
	"context"
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// ClientIPResolver reports the address a call originated from. Forwarding headers
// (x-forwarded-for, x-real-ip) are honoured only when the transport peer is loopback,
// which is where the REST gateway dials from, or inside one of the trusted networks.
// A nil resolver trusts loopback only.
type ClientIPResolver struct {
	trusted []*net.IPNet
}

// NewClientIPResolver parses trusted proxy addresses given as IPs or CIDRs.
func NewClientIPResolver(proxies []string) (*ClientIPResolver, error) {
	r := &ClientIPResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q: invalid address", p)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			r.trusted = append(r.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		r.trusted = append(r.trusted, n)
	}
	return r, nil
}

// ClientIP returns the originating client address, or "unknown" when there is no peer.
func (r *ClientIPResolver) ClientIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if r.trusts(net.ParseIP(addr)) {
		if fwd := forwardedFor(ctx); fwd != "" {
			return fwd
		}
	}
	return addr
}

func (r *ClientIPResolver) trusts(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	if r == nil {
		return false
	}
	for _, n := range r.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func forwardedFor(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
		first, _, _ := strings.Cut(vals[0], ",")
		if s := strings.TrimSpace(first); s != "" {
			return s
		}
	}
	if vals := md.Get("x-real-ip"); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// ClientIP resolves the client address trusting forwarding headers from loopback peers only.
func ClientIP(ctx context.Context) string {
	return (*ClientIPResolver)(nil).ClientIP(ctx)
}
