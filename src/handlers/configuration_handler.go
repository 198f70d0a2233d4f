package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/security/validation"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/session"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type ConfigurationHandler struct {
	store    *brokers.ConfigStore
	registry *brokers.Registry
	refresh  *services.RefreshService
}

func NewConfigurationHandler(store *brokers.ConfigStore, registry *brokers.Registry, refresh *services.RefreshService) *ConfigurationHandler {
	return &ConfigurationHandler{store: store, registry: registry, refresh: refresh}
}

// brokerConfigView is what the API exposes: everything except secrets.
type brokerConfigView struct {
	Broker                 string   `json:"broker"`
	Enabled                bool     `json:"enabled"`
	StartDate              string   `json:"start_date,omitempty"`
	UpdateFrequencyMinutes int      `json:"update_frequency_minutes"`
	HasCredentials         bool     `json:"has_credentials"`
	Capabilities           []string `json:"capabilities"`
}

type configurationResponse struct {
	SelectedPortfolio models.PortfolioSelector `json:"selected_portfolio"`
	Brokers           []brokerConfigView       `json:"brokers"`
}

type configurationRequest struct {
	SelectedPortfolio *models.PortfolioSelector  `json:"selected_portfolio,omitempty"`
	Brokers           map[string]brokerConfigSet `json:"brokers,omitempty"`
}

type brokerConfigSet struct {
	Enabled                *bool                `json:"enabled,omitempty"`
	StartDate              *string              `json:"start_date,omitempty"`
	UpdateFrequencyMinutes *int                 `json:"update_frequency_minutes,omitempty"`
	Credentials            *brokers.Credentials `json:"credentials,omitempty"`
}

func (h *ConfigurationHandler) HandleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	state, ok := session.FromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	views := make([]brokerConfigView, 0, len(h.registry.RegisteredBrokers()))
	for _, name := range h.registry.RegisteredBrokers() {
		cfg, err := h.store.Load(name)
		if err != nil {
			logger.FromContext(r.Context()).Error("Could not load broker configuration", "broker", name, "error", err)
			utils.SendJSONError(w, "could not load configuration", http.StatusInternalServerError)
			return
		}

		var capabilities []string
		for _, serviceType := range models.AllServiceTypes {
			if h.registry.Supports(name, serviceType) {
				capabilities = append(capabilities, string(serviceType))
			}
		}

		views = append(views, brokerConfigView{
			Broker:                 name,
			Enabled:                cfg.Enabled,
			StartDate:              cfg.StartDate,
			UpdateFrequencyMinutes: cfg.UpdateFrequencyMinutes,
			HasCredentials:         cfg.Credentials != (brokers.Credentials{}),
			Capabilities:           capabilities,
		})
	}

	utils.WriteJSON(w, http.StatusOK, configurationResponse{
		SelectedPortfolio: state.SelectedPortfolio,
		Brokers:           views,
	})
}

// HandlePostConfiguration updates the session's portfolio selection and
// the per-broker settings. Free-text fields pass through the sanitizer
// before they reach the database; changing a broker's credentials drops
// its session authentication so the next request re-authenticates.
func (h *ConfigurationHandler) HandlePostConfiguration(w http.ResponseWriter, r *http.Request) {
	state, ok := session.FromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	var req configurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.SelectedPortfolio != nil {
		selector := models.PortfolioSelector(validation.SanitizeText(string(*req.SelectedPortfolio)))
		if selector != models.SelectorAll && !h.knownBroker(string(selector)) {
			utils.SendJSONError(w, "unknown portfolio selector", http.StatusBadRequest)
			return
		}
		state.SelectedPortfolio = selector
	}

	ctxLogger := logger.FromContext(r.Context())
	for name, changes := range req.Brokers {
		name = validation.SanitizeText(name)
		if !h.knownBroker(name) {
			utils.SendJSONError(w, "unknown broker: "+name, http.StatusBadRequest)
			return
		}

		cfg, err := h.store.Load(name)
		if err != nil {
			ctxLogger.Error("Could not load broker configuration", "broker", name, "error", err)
			utils.SendJSONError(w, "could not load configuration", http.StatusInternalServerError)
			return
		}

		if changes.Enabled != nil {
			cfg.Enabled = *changes.Enabled
		}
		if changes.StartDate != nil {
			cfg.StartDate = validation.SanitizeText(*changes.StartDate)
		}
		if changes.UpdateFrequencyMinutes != nil && *changes.UpdateFrequencyMinutes > 0 {
			cfg.UpdateFrequencyMinutes = *changes.UpdateFrequencyMinutes
		}
		if changes.Credentials != nil {
			cfg.Credentials = sanitizeCredentials(*changes.Credentials)
			state.ClearBroker(name)
		}

		if err := h.store.Save(cfg); err != nil {
			ctxLogger.Error("Could not save broker configuration", "broker", name, "error", err)
			utils.SendJSONError(w, "could not save configuration", http.StatusInternalServerError)
			return
		}
		ctxLogger.Info("Broker configuration updated", "broker", name, "enabled", cfg.Enabled)
	}

	if len(req.Brokers) > 0 && h.refresh != nil {
		// Detached from the request context: the refresh outlives the response.
		go h.refresh.RefreshAll(context.Background())
	}

	h.HandleGetConfiguration(w, r)
}

func (h *ConfigurationHandler) knownBroker(name string) bool {
	for _, registered := range h.registry.RegisteredBrokers() {
		if registered == name {
			return true
		}
	}
	return false
}

// Secrets are pasted by the user; strip markup but leave them otherwise
// untouched.
func sanitizeCredentials(c brokers.Credentials) brokers.Credentials {
	c.Username = validation.SanitizeText(c.Username)
	c.AccountID = validation.SanitizeText(c.AccountID)
	return c
}
