package normalize

import (
	"context"
	"net"
	"sync"
	"time"
)

const defaultMXTimeout = 3 * time.Second

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// MXChecker reports whether email domains accept mail. Results are cached
// per domain for the lifetime of the checker.
type MXChecker struct {
	resolver DNSResolver
	timeout  time.Duration

	mu    sync.Mutex
	cache map[string]bool
}

// MXCheckerOption configures optional dependencies.
type MXCheckerOption func(*MXChecker)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) MXCheckerOption {
	return func(c *MXChecker) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithLookupTimeout bounds every MX lookup.
func WithLookupTimeout(timeout time.Duration) MXCheckerOption {
	return func(c *MXChecker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewMXChecker builds a checker backed by the system resolver.
func NewMXChecker(opts ...MXCheckerOption) *MXChecker {
	c := &MXChecker{
		resolver: systemDNSResolver{},
		timeout:  defaultMXTimeout,
		cache:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliverable reports whether the address's domain publishes MX records.
func (c *MXChecker) Deliverable(ctx context.Context, email string) bool {
	domain, ok := EmailDomainASCII(email)
	if !ok {
		return false
	}

	c.mu.Lock()
	cached, hit := c.cache[domain]
	c.mu.Unlock()
	if hit {
		return cached
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	records, err := c.resolver.LookupMX(lookupCtx, domain)
	hasMX := err == nil && len(records) > 0

	c.mu.Lock()
	c.cache[domain] = hasMX
	c.mu.Unlock()
	return hasMX
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
