package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type DepositHandler struct {
	deposits *services.DepositsAggregator
}

func NewDepositHandler(deposits *services.DepositsAggregator) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

func (h *DepositHandler) HandleGetDeposits(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)
	deposits := h.deposits.GetDeposits(selector)
	if deposits == nil {
		deposits = []models.Deposit{}
	}
	utils.WriteJSON(w, http.StatusOK, deposits)
}
