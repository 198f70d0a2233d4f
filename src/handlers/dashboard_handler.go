package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

const dashboardRecentLimit = 10

type DashboardHandler struct {
	portfolio    *services.PortfolioAggregator
	transactions *services.TransactionsAggregator
	dividends    *services.DividendsAggregator
}

func NewDashboardHandler(
	portfolio *services.PortfolioAggregator,
	transactions *services.TransactionsAggregator,
	dividends *services.DividendsAggregator,
) *DashboardHandler {
	return &DashboardHandler{
		portfolio:    portfolio,
		transactions: transactions,
		dividends:    dividends,
	}
}

type dashboardResponse struct {
	Total              models.TotalPortfolio   `json:"total"`
	TopHoldings        []models.PortfolioEntry `json:"top_holdings"`
	RecentTransactions []models.Transaction    `json:"recent_transactions"`
	UpcomingDividends  []models.Dividend       `json:"upcoming_dividends"`
}

// HandleGetDashboard composes the landing-page summary: combined totals,
// the largest open positions and the most recent activity.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)

	entries := h.portfolio.GetPortfolio(selector)
	var holdings []models.PortfolioEntry
	for _, e := range entries {
		if !e.IsOpen || e.ProductType == models.ProductTypeCash || e.ProductType == models.ProductTypeCurrency {
			continue
		}
		holdings = append(holdings, e)
		if len(holdings) == dashboardRecentLimit {
			break
		}
	}
	if holdings == nil {
		holdings = []models.PortfolioEntry{}
	}

	transactions := h.transactions.GetTransactions(selector)
	if len(transactions) > dashboardRecentLimit {
		transactions = transactions[:dashboardRecentLimit]
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	upcoming := []models.Dividend{}
	for _, d := range h.dividends.GetDividends(selector) {
		if d.Type == models.DividendTypeUpcoming {
			upcoming = append(upcoming, d)
		}
	}

	utils.WriteJSON(w, http.StatusOK, dashboardResponse{
		Total:              h.portfolio.GetTotalPortfolio(selector),
		TopHoldings:        holdings,
		RecentTransactions: transactions,
		UpcomingDividends:  upcoming,
	})
}
