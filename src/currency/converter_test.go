package currency

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rate   float64
	ok     bool
	err    error
	called int
}

func (s *stubSource) HistoricalRate(from, to string, date time.Time) (float64, bool, error) {
	s.called++
	return s.rate, s.ok, s.err
}

type stubFallback struct {
	rate   float64
	err    error
	called int
}

func (s *stubFallback) Rate(from, to string, date time.Time) (float64, error) {
	s.called++
	return s.rate, s.err
}

var anyDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestConvertIdentity(t *testing.T) {
	source := &stubSource{}
	fallback := &stubFallback{}
	c := NewConverter(source, fallback)

	got, err := c.Convert(123.45, "EUR", "EUR", anyDate)
	require.NoError(t, err)
	assert.Equal(t, 123.45, got)
	assert.Zero(t, source.called, "identity conversion must not hit any source")
	assert.Zero(t, fallback.called)

	// Codes are normalized before comparison.
	got, err = c.Convert(10, " eur ", "EUR", anyDate)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}

func TestConvertPrefersSource(t *testing.T) {
	source := &stubSource{rate: 1.10, ok: true}
	fallback := &stubFallback{rate: 99}
	c := NewConverter(source, fallback)

	got, err := c.Convert(100, "EUR", "USD", anyDate)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, got, 1e-9)
	assert.Zero(t, fallback.called)
}

func TestConvertFallsBackWhenSourceHasNoRate(t *testing.T) {
	source := &stubSource{ok: false}
	fallback := &stubFallback{rate: 1.08}
	c := NewConverter(source, fallback)

	got, err := c.Convert(100, "EUR", "USD", anyDate)
	require.NoError(t, err)
	assert.InDelta(t, 108.0, got, 1e-9)
	assert.Equal(t, 1, source.called)
	assert.Equal(t, 1, fallback.called)
}

func TestConvertFallsBackOnSourceError(t *testing.T) {
	source := &stubSource{err: errors.New("db closed")}
	fallback := &stubFallback{rate: 1.08}
	c := NewConverter(source, fallback)

	got, err := c.Convert(100, "EUR", "USD", anyDate)
	require.NoError(t, err)
	assert.InDelta(t, 108.0, got, 1e-9)
}

func TestConvertNilSourceUsesFallback(t *testing.T) {
	fallback := &stubFallback{rate: 0.92}
	c := NewConverter(nil, fallback)

	got, err := c.Convert(100, "USD", "EUR", anyDate)
	require.NoError(t, err)
	assert.InDelta(t, 92.0, got, 1e-9)
}

func TestConvertPropagatesFallbackError(t *testing.T) {
	fallback := &stubFallback{err: errors.New("rate not found")}
	c := NewConverter(nil, fallback)

	_, err := c.Convert(100, "EUR", "JPY", anyDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EUR to JPY")
}
