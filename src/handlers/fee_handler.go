package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type FeeHandler struct {
	fees *services.FeesAggregator
}

func NewFeeHandler(fees *services.FeesAggregator) *FeeHandler {
	return &FeeHandler{fees: fees}
}

func (h *FeeHandler) HandleGetFees(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)
	fees := h.fees.GetFees(selector)
	if fees == nil {
		fees = []models.Fee{}
	}
	utils.WriteJSON(w, http.StatusOK, fees)
}
