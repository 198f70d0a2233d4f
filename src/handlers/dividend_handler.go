package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type DividendHandler struct {
	dividends *services.DividendsAggregator
}

func NewDividendHandler(dividends *services.DividendsAggregator) *DividendHandler {
	return &DividendHandler{dividends: dividends}
}

func (h *DividendHandler) HandleGetDividends(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)
	dividends := h.dividends.GetDividends(selector)
	if dividends == nil {
		dividends = []models.Dividend{}
	}
	utils.WriteJSON(w, http.StatusOK, dividends)
}
