package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type AccountHandler struct {
	account *services.AccountAggregator
}

func NewAccountHandler(account *services.AccountAggregator) *AccountHandler {
	return &AccountHandler{account: account}
}

func (h *AccountHandler) HandleGetAccountOverview(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)
	overview := h.account.GetAccountOverview(selector)
	if overview == nil {
		overview = []models.AccountOverview{}
	}
	utils.WriteJSON(w, http.StatusOK, overview)
}
