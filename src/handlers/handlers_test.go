package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/session"
)

const sessionSecret = "0123456789abcdef0123456789abcdef"

// enabledSet is a ConfigProvider backed by a plain set.
type enabledSet map[string]bool

func (e enabledSet) IsEnabled(broker string) bool { return e[broker] }

type txStub struct {
	transactions []models.Transaction
}

func (s *txStub) GetTransactions() ([]models.Transaction, error) {
	return s.transactions, nil
}

// withSession wraps a handler in the session middleware and returns the
// pre-issued state plus its cookie so tests can inspect session flags.
func withSession(t *testing.T, handler http.Handler) (*session.State, *http.Cookie, http.Handler) {
	t.Helper()
	manager := session.NewManager(sessionSecret, time.Hour, false)
	rec := httptest.NewRecorder()
	state, err := manager.Issue(rec)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return state, cookies[0], manager.Middleware(handler)
}

func get(handler http.Handler, cookie *http.Cookie, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetTransactionsReturnsEmptyArrayWithoutCapability(t *testing.T) {
	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{})

	agg := services.NewTransactionsAggregator(registry, enabledSet{"a": true})
	handler := NewTransactionHandler(agg)

	_, cookie, chain := withSession(t, http.HandlerFunc(handler.HandleGetTransactions))
	rec := get(chain, cookie, "/api/transactions")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetTransactionsQueryParamScopesBroker(t *testing.T) {
	ts := func(s string) time.Time {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic(err)
		}
		return parsed
	}

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Transactions: &txStub{
		transactions: []models.Transaction{{Broker: "a", Symbol: "ASML", Timestamp: ts("2024-01-01")}},
	}})
	registry.Register("b", brokers.Capabilities{Transactions: &txStub{
		transactions: []models.Transaction{{Broker: "b", Symbol: "BTC", Timestamp: ts("2024-01-02")}},
	}})

	agg := services.NewTransactionsAggregator(registry, enabledSet{"a": true, "b": true})
	handler := NewTransactionHandler(agg)
	_, cookie, chain := withSession(t, http.HandlerFunc(handler.HandleGetTransactions))

	rec := get(chain, cookie, "/api/transactions?portfolio=b")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Broker)

	// Without the query parameter the session default (all brokers) applies.
	rec = get(chain, cookie, "/api/transactions")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}
