package service

import (
	"context"
	"errors"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
	"payment-service/internal/repository"
	"payment-service/internal/validator"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ServiceRepository defines the read access to the service catalog
type ServiceRepository interface {
	FindByName(ctx context.Context, name string) (domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
}

// Catalog prices a payment before it starts: either a named service or a
// custom amount chosen by the payer.
type Catalog struct {
	services        ServiceRepository
	minServicePrice decimal.Decimal
	minCustomAmount decimal.Decimal
}

func NewCatalog(services ServiceRepository, minServicePrice, minCustomAmount decimal.Decimal) *Catalog {
	return &Catalog{
		services:        services,
		minServicePrice: minServicePrice,
		minCustomAmount: minCustomAmount,
	}
}

// SelectService resolves a service name to its canonical name and price.
func (c *Catalog) SelectService(ctx context.Context, name string) (domain.Service, error) {
	lookup, err := validator.ServiceName(name)
	if err != nil {
		return domain.Service{}, err
	}

	svc, err := c.services.FindByName(ctx, lookup)
	if errors.Is(err, repository.ErrNotFound) {
		log.WithField("service_name", lookup).Info("Service lookup missed")
		return domain.Service{}, apperr.ServiceNotFound()
	}
	if err != nil {
		log.WithError(err).WithField("service_name", lookup).Error("Service lookup failed")
		return domain.Service{}, apperr.Database(err)
	}

	if c.minServicePrice.IsPositive() && svc.Price.LessThan(c.minServicePrice) {
		log.WithFields(log.Fields{
			"service_name": svc.Name,
			"price":        svc.Price.StringFixed(2),
			"floor":        c.minServicePrice.StringFixed(2),
		}).Warn("Service price is below the configured floor")
		return domain.Service{}, apperr.PriceTooLow(c.minServicePrice.StringFixed(2))
	}
	return svc, nil
}

// ValidateCustomAmount returns the amount formatted with two fraction digits.
func (c *Catalog) ValidateCustomAmount(raw string) (string, error) {
	amount, err := validator.CustomAmount(raw, c.minCustomAmount)
	if err != nil {
		return "", err
	}
	return amount.StringFixed(2), nil
}

func (c *Catalog) ListServices(ctx context.Context) ([]domain.Service, error) {
	services, err := c.services.List(ctx)
	if err != nil {
		log.WithError(err).Error("Listing services failed")
		return nil, apperr.Database(err)
	}
	return services, nil
}
