// Package services contains the cross-broker aggregation layer and the
// background refresh job. Aggregators query the registry for brokers that
// are enabled and support the requested capability, merge their results and
// apply the authoritative sort; a failing broker is logged and contributes
// nothing rather than failing the whole request.
package services

import (
	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
)

// ConfigProvider gates brokers on their persisted configuration.
type ConfigProvider interface {
	IsEnabled(broker string) bool
}

// aggregator carries the dependencies every concrete aggregator shares.
type aggregator struct {
	registry *brokers.Registry
	config   ConfigProvider
}

// eachBroker invokes fn for every registered broker that matches the
// selector, is enabled, and supports the capability. This is the single
// place the gating rules live.
func (a *aggregator) eachBroker(selector models.PortfolioSelector, serviceType models.ServiceType, fn func(name string, caps brokers.Capabilities)) {
	for _, name := range a.registry.RegisteredBrokers() {
		if !selector.Matches(name) {
			continue
		}
		if !a.config.IsEnabled(name) {
			continue
		}
		if !a.registry.Supports(name, serviceType) {
			continue
		}
		caps, ok := a.registry.Capabilities(name)
		if !ok {
			continue
		}
		fn(name, caps)
	}
}

// logBrokerError records a broker-level failure; the caller treats the
// broker's contribution as empty.
func logBrokerError(broker string, serviceType models.ServiceType, err error) {
	logger.L.Error("Broker service call failed, skipping its contribution",
		"broker", broker, "service", string(serviceType), "error", err)
}
