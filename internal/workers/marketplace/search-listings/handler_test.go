package searchlistings

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/marketplace/listings"
	"car-mzansi-connect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCatalogue struct{ err error }

func (f failingCatalogue) Search(context.Context, string, *listings.Filters) ([]models.Listing, error) {
	return nil, f.err
}

func (f failingCatalogue) Get(context.Context, string) (models.Listing, error) {
	return models.Listing{}, f.err
}

func newTestHandler(t *testing.T, c listings.Catalogue) *Handler {
	return NewHandler(LoadConfig(""), c, logger.NewTestLogger(t))
}

func sample() listings.Catalogue {
	return listings.NewSample(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Query(t *testing.T) {
	out, err := newTestHandler(t, sample()).Execute(context.Background(), &Input{Query: "bmw"})
	require.NoError(t, err)

	require.Equal(t, 1, out.Total)
	got := out.Listings[0]
	assert.Equal(t, "2022 BMW 320i M Sport", got.Title)
	assert.Equal(t, "R 599 000", got.Price)
	assert.Contains(t, got.WhatsAppLink, "https://wa.me/27123456789?text=")
}

func TestHandler_Execute_AllWhenEmpty(t *testing.T) {
	out, err := newTestHandler(t, sample()).Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 0, out.ActiveFilters)
}

func TestHandler_Execute_Filters(t *testing.T) {
	f := listings.DefaultFilters()
	f.Verified = true
	f.Makes = []string{"Mercedes-Benz"}

	out, err := newTestHandler(t, sample()).Execute(context.Background(), &Input{Filters: &f})
	require.NoError(t, err)
	assert.Equal(t, 2, out.ActiveFilters)
	require.Len(t, out.Listings, 1)
	assert.Contains(t, out.Listings[0].Title, "C200")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidFilters(t *testing.T) {
	f := listings.DefaultFilters()
	f.PriceRange = listings.Range{Min: 500000, Max: 100000}

	_, err := newTestHandler(t, sample()).Execute(context.Background(), &Input{Filters: &f})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidFilterFormat, stdErr.Code)
	assert.Contains(t, stdErr.Details, "price")
}

func TestHandler_Execute_SearchFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"query failed", stderrors.New("search listings: [500 Internal Server Error]"), errors.ErrCodeSearchQueryFailed},
		{"timeout", context.DeadlineExceeded, errors.ErrCodeSearchTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestHandler(t, failingCatalogue{tt.err}).Execute(context.Background(), &Input{Query: "audi"})
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, stdErr.Code)
			assert.True(t, stdErr.Retryable)
		})
	}
}
