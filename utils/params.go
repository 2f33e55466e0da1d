package utils

import (
	"fmt"
	"net"
	"net/netip"
	"net/http"
	"strconv"
	"strings"
)

// MaxPage is the highest page a listing query may ask for.
const MaxPage = 10000

type QueryOptions struct {
	Page     int
	Search   string
	Category string
	Tag      string
	Status   string
}

// ParseQueryOptions reads the listing parameters. Page defaults to 1 and is
// capped at MaxPage.
func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	return QueryOptions{
		Page:     page,
		Search:   strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Tag:      strings.TrimSpace(q.Get("tag")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
}

// ParseProxies reads trusted proxy entries, each a single IP or a CIDR.
func ParseProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func trustedAddr(s string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP is the connection address without its port. X-Forwarded-For is
// only read when that peer is a trusted proxy, and then the right-most hop
// not itself trusted wins.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !trustedAddr(peer, trusted) {
		return peer
	}
	fwd := r.Header.Values("X-Forwarded-For")
	if len(fwd) == 0 {
		return peer
	}
	hops := strings.Split(strings.Join(fwd, ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			// a garbled hop ends the chain we can vouch for
			return peer
		}
		if !trustedAddr(hop, trusted) {
			return hop
		}
		peer = hop
	}
	return peer
}
