package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type PortfolioHandler struct {
	portfolio       *services.PortfolioAggregator
	diversification *services.DiversificationService
}

func NewPortfolioHandler(portfolio *services.PortfolioAggregator, diversification *services.DiversificationService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, diversification: diversification}
}

type portfolioResponse struct {
	Entries []models.PortfolioEntry `json:"entries"`
	Total   models.TotalPortfolio   `json:"total"`
}

func (h *PortfolioHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)

	entries := h.portfolio.GetPortfolio(selector)
	if entries == nil {
		entries = []models.PortfolioEntry{}
	}
	utils.WriteJSON(w, http.StatusOK, portfolioResponse{
		Entries: entries,
		Total:   h.portfolio.GetTotalPortfolio(selector),
	})
}

func (h *PortfolioHandler) HandleGetDiversification(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)
	utils.WriteJSON(w, http.StatusOK, h.diversification.GetDiversification(selector))
}
