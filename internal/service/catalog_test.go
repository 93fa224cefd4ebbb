package service

import (
	"context"
	"errors"
	"testing"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testServices = []domain.Service{
	{ID: 1, Name: "Basic Service", Price: decimal.NewFromInt(100)},
	{ID: 2, Name: "Standard Service", Price: decimal.NewFromInt(300)},
	{ID: 3, Name: "Premium Service", Price: decimal.NewFromInt(500)},
}

func TestSelectServiceAnyCase(t *testing.T) {
	catalog := NewCatalog(catalogOf(testServices...), decimal.Zero, decimal.Zero)

	for _, name := range []string{"Basic Service", " basic service ", "BASIC SERVICE", "bAsIc SeRvIcE\t"} {
		svc, err := catalog.SelectService(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, "Basic Service", svc.Name)
		assert.True(t, decimal.NewFromInt(100).Equal(svc.Price))
	}
}

func TestSelectServiceUnknown(t *testing.T) {
	catalog := NewCatalog(catalogOf(testServices...), decimal.Zero, decimal.Zero)

	for _, name := range []string{"Gold Service", "Basic", "<script>"} {
		_, err := catalog.SelectService(context.Background(), name)
		require.ErrorIs(t, err, apperr.ErrServiceNotFound, name)
		assert.Equal(t, "Service not found", apperr.From(err).Message)
	}
}

func TestSelectServiceEmptyName(t *testing.T) {
	repo := &mockServiceRepository{
		FindByNameFunc: func(context.Context, string) (domain.Service, error) {
			t.Fatal("repository must not be called")
			return domain.Service{}, nil
		},
	}
	catalog := NewCatalog(repo, decimal.Zero, decimal.Zero)

	_, err := catalog.SelectService(context.Background(), "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSelectServicePriceFloor(t *testing.T) {
	catalog := NewCatalog(catalogOf(testServices...), decimal.NewFromInt(300), decimal.Zero)

	_, err := catalog.SelectService(context.Background(), "basic service")
	require.ErrorIs(t, err, apperr.ErrPriceTooLow)

	svc, err := catalog.SelectService(context.Background(), "standard service")
	require.NoError(t, err)
	assert.Equal(t, "Standard Service", svc.Name)
}

func TestSelectServiceStorageFailure(t *testing.T) {
	repo := &mockServiceRepository{
		FindByNameFunc: func(context.Context, string) (domain.Service, error) {
			return domain.Service{}, errors.New("pq: too many connections")
		},
	}
	catalog := NewCatalog(repo, decimal.Zero, decimal.Zero)

	_, err := catalog.SelectService(context.Background(), "Basic Service")
	require.ErrorIs(t, err, apperr.ErrDatabase)
	assert.NotContains(t, apperr.From(err).Message, "too many connections")
}

func TestValidateCustomAmount(t *testing.T) {
	catalog := NewCatalog(catalogOf(), decimal.Zero, decimal.NewFromInt(50))

	got, err := catalog.ValidateCustomAmount("75.5")
	require.NoError(t, err)
	assert.Equal(t, "75.50", got)

	got, err = catalog.ValidateCustomAmount("120,4")
	require.NoError(t, err)
	assert.Equal(t, "120.40", got)

	_, err = catalog.ValidateCustomAmount("25")
	assert.ErrorIs(t, err, apperr.ErrAmountTooLow)

	_, err = catalog.ValidateCustomAmount("-1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = catalog.ValidateCustomAmount("ten")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestValidateCustomAmountRoundsBeforeChecks(t *testing.T) {
	catalog := NewCatalog(catalogOf(), decimal.Zero, decimal.NewFromInt(50))

	got, err := catalog.ValidateCustomAmount("49.999")
	require.NoError(t, err)
	assert.Equal(t, "50.00", got)

	for _, raw := range []string{"1e999999999", "1e2000000", "10000000000.00"} {
		_, err := catalog.ValidateCustomAmount(raw)
		assert.ErrorIs(t, err, apperr.ErrValidation, "input %q", raw)
	}

	free := NewCatalog(catalogOf(), decimal.Zero, decimal.Zero)
	_, err = free.ValidateCustomAmount("0.004")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListServices(t *testing.T) {
	catalog := NewCatalog(catalogOf(testServices...), decimal.Zero, decimal.Zero)

	services, err := catalog.ListServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 3)
}
