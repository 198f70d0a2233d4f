package handlers

import (
	"net/http"

	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/utils"
)

type TransactionHandler struct {
	transactions *services.TransactionsAggregator
}

func NewTransactionHandler(transactions *services.TransactionsAggregator) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	selector := selectorFromRequest(r)
	transactions := h.transactions.GetTransactions(selector)
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	utils.WriteJSON(w, http.StatusOK, transactions)
}
