package validators

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Resolver is the subset of *net.Resolver the domain check needs.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// EmailDomainChecker rejects addresses whose domain has no MX or A record,
// which catches most typos at booking time. Lookups are bounded by Timeout
// and a resolver failure is treated as valid so DNS trouble never blocks a
// booking.
type EmailDomainChecker struct {
	Resolver Resolver
	Timeout  time.Duration
}

func NewEmailDomainChecker() *EmailDomainChecker {
	return &EmailDomainChecker{Resolver: net.DefaultResolver, Timeout: 2 * time.Second}
}

func (e *EmailDomainChecker) Valid(ctx context.Context, email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if !strings.Contains(domain, ".") {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	mx, err := e.Resolver.LookupMX(ctx, domain)
	if err == nil && len(mx) > 0 {
		return true
	}
	if err != nil && !notFound(err) {
		return true
	}

	hosts, err := e.Resolver.LookupHost(ctx, domain)
	if err != nil {
		return !notFound(err)
	}
	return len(hosts) > 0
}

func notFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}
