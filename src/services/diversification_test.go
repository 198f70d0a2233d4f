package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/models"
)

type stubProfiles struct {
	bySector map[string]string
	err      error
}

func (s *stubProfiles) Profile(isin string) (SecurityProfile, error) {
	if s.err != nil {
		return SecurityProfile{}, s.err
	}
	return SecurityProfile{Sector: s.bySector[isin]}, nil
}

func newDiversificationFixture(t *testing.T, entries []models.PortfolioEntry, profiles ProfileLookup) *DiversificationService {
	t.Helper()
	broker := newFakeBroker()
	broker.portfolio = entries

	registry := brokers.NewRegistry()
	registry.Register("a", brokers.Capabilities{Portfolio: broker})
	agg := NewPortfolioAggregator(registry, enabledSet{"a": true}, "EUR")
	return NewDiversificationService(agg, profiles, "EUR")
}

func TestDiversificationBySectorExcludesCash(t *testing.T) {
	svc := newDiversificationFixture(t, []models.PortfolioEntry{
		{Symbol: "ASML", Sector: "Technology", ProductType: models.ProductTypeStock, BaseValue: 600, IsOpen: true},
		{Symbol: "MSFT", Sector: "Technology", ProductType: models.ProductTypeStock, BaseValue: 200, IsOpen: true},
		{Symbol: "VWRL", Sector: "Diversified", ProductType: models.ProductTypeETF, BaseValue: 200, IsOpen: true},
		{Symbol: "EUR", ProductType: models.ProductTypeCash, BaseValue: 500, IsOpen: true},
		{Symbol: "GONE", Sector: "Energy", ProductType: models.ProductTypeStock, BaseValue: 100, IsOpen: false},
	}, nil)

	breakdown := svc.GetDiversification(models.SelectorAll)

	require.Len(t, breakdown.BySector, 2)
	assert.Equal(t, "Technology", breakdown.BySector[0].Label)
	assert.InDelta(t, 0.8, breakdown.BySector[0].Weight, 1e-9)
	assert.Equal(t, "Diversified", breakdown.BySector[1].Label)

	// The cash position still shows up in the product-type view.
	var productLabels []string
	for _, slice := range breakdown.ByProductType {
		productLabels = append(productLabels, slice.Label)
	}
	assert.Contains(t, productLabels, string(models.ProductTypeCash))
}

func TestDiversificationEnrichesMissingSectorFromProfile(t *testing.T) {
	profiles := &stubProfiles{bySector: map[string]string{"US0378331005": "Technology"}}
	svc := newDiversificationFixture(t, []models.PortfolioEntry{
		{Symbol: "AAPL", ISIN: "US0378331005", ProductType: models.ProductTypeStock, BaseValue: 100, IsOpen: true},
	}, profiles)

	breakdown := svc.GetDiversification(models.SelectorAll)
	require.Len(t, breakdown.BySector, 1)
	assert.Equal(t, "Technology", breakdown.BySector[0].Label)
}

func TestDiversificationLookupFailureBucketsAsOther(t *testing.T) {
	profiles := &stubProfiles{err: errors.New("yahoo down")}
	svc := newDiversificationFixture(t, []models.PortfolioEntry{
		{Symbol: "AAPL", ISIN: "US0378331005", ProductType: models.ProductTypeStock, BaseValue: 100, IsOpen: true},
		{Symbol: "MYST", ProductType: models.ProductTypeStock, BaseValue: 50, IsOpen: true},
	}, profiles)

	breakdown := svc.GetDiversification(models.SelectorAll)
	require.Len(t, breakdown.BySector, 1)
	assert.Equal(t, "Other", breakdown.BySector[0].Label)
	assert.InDelta(t, 1.0, breakdown.BySector[0].Weight, 1e-9)
}

func TestDiversificationByBroker(t *testing.T) {
	svc := newDiversificationFixture(t, []models.PortfolioEntry{
		{Broker: "a", Symbol: "ASML", Sector: "Technology", ProductType: models.ProductTypeStock, BaseValue: 300, IsOpen: true},
		{Broker: "a", Symbol: "BTC", Sector: "Cryptocurrency", ProductType: models.ProductTypeCrypto, BaseValue: 100, IsOpen: true},
	}, nil)

	breakdown := svc.GetDiversification(models.SelectorAll)
	require.Len(t, breakdown.ByBroker, 1)
	assert.Equal(t, "a", breakdown.ByBroker[0].Label)
	assert.InDelta(t, 1.0, breakdown.ByBroker[0].Weight, 1e-9)
}
