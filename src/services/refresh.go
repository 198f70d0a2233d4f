package services

import (
	"context"
	"time"

	"github.com/username/stonksoverwatch/backend/src/logger"
)

// BrokerUpdater imports a broker's data into the local database. Each
// broker package provides its own implementation over its API client.
type BrokerUpdater interface {
	Broker() string
	Update(ctx context.Context) error
}

// RefreshService runs the full "update all brokers" pass. It is invoked by
// the scheduler and, on demand, after configuration changes.
type RefreshService struct {
	config   ConfigProvider
	updaters []BrokerUpdater
}

func NewRefreshService(config ConfigProvider, updaters ...BrokerUpdater) *RefreshService {
	return &RefreshService{config: config, updaters: updaters}
}

// RefreshAll updates every enabled broker sequentially. A broker failure
// is logged and the pass continues; the scheduler thread must never die
// because one API call went wrong.
func (s *RefreshService) RefreshAll(ctx context.Context) {
	started := time.Now()
	logger.L.Info("Broker data refresh starting")

	for _, updater := range s.updaters {
		broker := updater.Broker()
		if !s.config.IsEnabled(broker) {
			logger.L.Debug("Broker disabled, skipping refresh", "broker", broker)
			continue
		}
		if err := updater.Update(ctx); err != nil {
			logger.L.Error("Broker refresh failed", "broker", broker, "error", err)
			continue
		}
		logger.L.Info("Broker refresh completed", "broker", broker)
	}

	logger.L.Info("Broker data refresh finished", "duration", time.Since(started).String())
}
