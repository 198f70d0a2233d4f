package handlers

import (
	"errors"
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/session"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type authFailure struct {
	Error    string `json:"error"`
	Reason   string `json:"reason"`
	Redirect string `json:"redirect"`
}

// ConfigProvider tells whether a broker is enabled.
type ConfigProvider interface {
	IsEnabled(broker string) bool
}

// BrokerAuth gates the data endpoints on broker authentication. Each
// enabled broker with an authentication capability must have authenticated
// once in the current session; failures turn into a 401 carrying a
// login-redirect hint for the frontend.
type BrokerAuth struct {
	registry *brokers.Registry
	config   ConfigProvider
	loginURL string
}

func NewBrokerAuth(registry *brokers.Registry, config ConfigProvider, loginURL string) *BrokerAuth {
	return &BrokerAuth{registry: registry, config: config, loginURL: loginURL}
}

// Middleware authenticates lazily: brokers already flagged in the session
// are not re-checked. A "TOTP required" outcome keeps the session flags so
// the pending second factor survives the redirect; any other failure
// clears the broker's flags.
func (a *BrokerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ok := session.FromContext(r.Context())
		if !ok {
			utils.SendJSONError(w, "session required", http.StatusUnauthorized)
			return
		}

		for _, name := range a.registry.RegisteredBrokers() {
			if !a.config.IsEnabled(name) {
				continue
			}
			caps, found := a.registry.Capabilities(name)
			if !found || caps.Authentication == nil {
				continue
			}
			if state.IsAuthenticated(name) {
				continue
			}

			err := caps.Authentication.Authenticate(r.Context())
			if err == nil {
				state.SetAuthenticated(name, true)
				state.SetTOTPRequired(name, false)
				continue
			}

			ctxLogger := logger.FromContext(r.Context())
			if errors.Is(err, brokers.ErrTOTPRequired) {
				ctxLogger.Info("Broker authentication pending second factor", "broker", name)
				state.SetTOTPRequired(name, true)
				utils.WriteJSON(w, http.StatusUnauthorized, authFailure{
					Error:    "authentication incomplete",
					Reason:   "totp_required",
					Redirect: a.loginURL,
				})
				return
			}

			ctxLogger.Warn("Broker authentication failed", "broker", name, "error", err)
			state.ClearBroker(name)
			utils.WriteJSON(w, http.StatusUnauthorized, authFailure{
				Error:    "authentication failed",
				Reason:   reasonFor(err),
				Redirect: a.loginURL,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, brokers.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, brokers.ErrMaintenance):
		return "maintenance"
	case errors.Is(err, brokers.ErrConnectionFailed):
		return "connection_failed"
	default:
		return "error"
	}
}

// selectorFromRequest picks the portfolio scope: an explicit query
// parameter wins, otherwise the session's stored selection.
func selectorFromRequest(r *http.Request) models.PortfolioSelector {
	if raw := r.URL.Query().Get("portfolio"); raw != "" {
		return models.PortfolioSelector(raw)
	}
	if state, ok := session.FromContext(r.Context()); ok {
		return state.SelectedPortfolio
	}
	return models.SelectorAll
}
