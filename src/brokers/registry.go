package brokers

import (
	"sync"

	"github.com/username/stonksoverwatch/backend/src/models"
)

// Capabilities bundles the service implementations a broker provides.
// A nil field means the broker does not support that capability; lookups
// soft-fail instead of erroring.
type Capabilities struct {
	Transactions   TransactionService
	Fees           FeeService
	Deposits       DepositService
	Dividends      DividendService
	Account        AccountService
	Portfolio      PortfolioService
	Authentication AuthenticationService
}

// Registry maps broker names to their capabilities. It is constructed once
// at startup and injected into the aggregators; registration order is
// preserved for stable iteration.
type Registry struct {
	mu      sync.RWMutex
	brokers map[string]Capabilities
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{brokers: make(map[string]Capabilities)}
}

// Register stores the capability set for a broker. Re-registration
// overwrites the previous entry and keeps the original position.
func (r *Registry) Register(name string, caps Capabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.brokers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.brokers[name] = caps
}

// RegisteredBrokers returns broker names in registration order.
func (r *Registry) RegisteredBrokers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Supports reports whether a broker implements the given capability.
// Unknown brokers and nil capabilities both report false.
func (r *Registry) Supports(name string, serviceType models.ServiceType) bool {
	r.mu.RLock()
	caps, ok := r.brokers[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	switch serviceType {
	case models.ServiceTransaction:
		return caps.Transactions != nil
	case models.ServiceFee:
		return caps.Fees != nil
	case models.ServiceDeposit:
		return caps.Deposits != nil
	case models.ServiceDividend:
		return caps.Dividends != nil
	case models.ServiceAccount:
		return caps.Account != nil
	case models.ServicePortfolio:
		return caps.Portfolio != nil
	case models.ServiceAuthentication:
		return caps.Authentication != nil
	default:
		return false
	}
}

// Capabilities returns the capability set for a broker, if registered.
func (r *Registry) Capabilities(name string) (Capabilities, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.brokers[name]
	return caps, ok
}
