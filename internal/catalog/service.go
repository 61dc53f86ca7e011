package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/cache"
	"github.com/sahalat/booking-engine/pkg/common"
)

// CatalogRepository defines the storage operations required by the service.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*Product, int, error)
	GetTierRates(ctx context.Context, productID uuid.UUID) (*TierRates, error)
	PutTierRates(ctx context.Context, rates *TierRates) error
	GetActiveDiscount(ctx context.Context, productID uuid.UUID, now time.Time) (*Discount, error)
	CreateDiscount(ctx context.Context, discount *Discount) error
	UpdateDiscount(ctx context.Context, discount *Discount) error
	DeactivateDiscount(ctx context.Context, discountID uuid.UUID) error
	ListDiscounts(ctx context.Context, productID uuid.UUID) ([]*Discount, error)
}

// Service handles product catalog business logic
type Service struct {
	repo  CatalogRepository
	cache *cache.Manager
}

// NewService creates a new catalog service
func NewService(repo CatalogRepository) *Service {
	return &Service{repo: repo}
}

// SetCache sets an optional cache manager for read-heavy operations.
func (s *Service) SetCache(cm *cache.Manager) {
	s.cache = cm
}

// GetProduct retrieves a product (cached)
func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	if s.cache != nil {
		var cached Product
		err := s.cache.GetOrSet(ctx, cache.Keys.Product(productID.String()), cache.TTL.Medium(), &cached, func() (interface{}, error) {
			product, err := s.repo.GetProduct(ctx, productID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, common.NewNotFoundError("product not found", nil)
			}
			return product, nil
		})
		if err == nil {
			return &cached, nil
		}
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		// Fall through to the database on cache plumbing errors
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, common.NewNotFoundError("product not found", nil)
	}
	return product, nil
}

// ListProducts retrieves all products with pagination
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]*Product, int, error) {
	return s.repo.ListProducts(ctx, limit, offset)
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(ctx context.Context, product *Product) error {
	if product.Name == "" {
		return common.NewValidationError("product name cannot be empty")
	}

	switch product.Type {
	case ProductCar:
	case ProductTrip:
		if product.RatePerPerson == nil || product.RatePerPerson.IsZero() || product.RatePerPerson.IsNegative() {
			return common.NewValidationError("trip products require a positive rate_per_person")
		}
		if product.DurationDays == nil || *product.DurationDays <= 0 {
			return common.NewValidationError("trip products require a positive duration_days")
		}
	default:
		return common.NewValidationError("product_type must be 'car' or 'trip'")
	}

	return s.repo.CreateProduct(ctx, product)
}

// GetTierRates retrieves a product's rate card (cached). Returns nil when
// the product has none.
func (s *Service) GetTierRates(ctx context.Context, productID uuid.UUID) (*TierRates, error) {
	if s.cache != nil {
		var cached TierRates
		err := s.cache.GetOrSet(ctx, cache.Keys.TierRates(productID.String()), cache.TTL.Short(), &cached, func() (interface{}, error) {
			rates, err := s.repo.GetTierRates(ctx, productID)
			if err != nil {
				return nil, err
			}
			if rates == nil {
				return nil, fmt.Errorf("no rate card for product %s", productID)
			}
			return rates, nil
		})
		if err == nil {
			return &cached, nil
		}
	}

	return s.repo.GetTierRates(ctx, productID)
}

// PutTierRates replaces a product's rate card and invalidates the cache
func (s *Service) PutTierRates(ctx context.Context, rates *TierRates) error {
	product, err := s.repo.GetProduct(ctx, rates.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return common.NewNotFoundError("product not found", nil)
	}
	if product.Type != ProductCar {
		return common.NewValidationError("rate cards apply to car products only")
	}
	if rates.PerDay == nil && rates.PerDayWithDriver == nil {
		return common.NewValidationError("a per-day rate is required for at least one driver mode")
	}

	if err := s.repo.PutTierRates(ctx, rates); err != nil {
		return err
	}

	s.invalidate(ctx, cache.Keys.TierRates(rates.ProductID.String()))
	return nil
}

// GetActiveDiscount retrieves the discount applying to a product right now.
// Returns nil when none applies.
func (s *Service) GetActiveDiscount(ctx context.Context, productID uuid.UUID, now time.Time) (*Discount, error) {
	return s.repo.GetActiveDiscount(ctx, productID, now)
}

// CreateDiscount creates a new discount
func (s *Service) CreateDiscount(ctx context.Context, discount *Discount) error {
	if err := validateDiscount(discount); err != nil {
		return err
	}

	product, err := s.repo.GetProduct(ctx, discount.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return common.NewNotFoundError("product not found", nil)
	}

	if err := s.repo.CreateDiscount(ctx, discount); err != nil {
		return err
	}

	s.invalidate(ctx, cache.Keys.ActiveDiscount(discount.ProductID.String()))
	return nil
}

// UpdateDiscount updates an existing discount
func (s *Service) UpdateDiscount(ctx context.Context, discount *Discount) error {
	if err := validateDiscount(discount); err != nil {
		return err
	}

	if err := s.repo.UpdateDiscount(ctx, discount); err != nil {
		return err
	}

	s.invalidate(ctx, cache.Keys.ActiveDiscount(discount.ProductID.String()))
	return nil
}

// DeactivateDiscount deactivates a discount
func (s *Service) DeactivateDiscount(ctx context.Context, discountID uuid.UUID) error {
	return s.repo.DeactivateDiscount(ctx, discountID)
}

// ListDiscounts retrieves all discounts configured for a product
func (s *Service) ListDiscounts(ctx context.Context, productID uuid.UUID) ([]*Discount, error) {
	return s.repo.ListDiscounts(ctx, productID)
}

func validateDiscount(discount *Discount) error {
	switch discount.Type {
	case DiscountPercentage:
		if discount.Percent == nil || !discount.Percent.Valid() {
			return common.NewValidationError("percentage discount requires a percent in (0, 100]")
		}
	case DiscountFixed:
		if discount.Amount == nil || discount.Amount.IsZero() || discount.Amount.IsNegative() {
			return common.NewUnprocessableError(common.CodeInvalidAmount, "fixed discount requires a positive amount", nil)
		}
	default:
		return common.NewValidationError("discount_type must be 'percentage' or 'fixed'")
	}

	if !discount.ValidFrom.Before(discount.ValidTo) {
		return common.NewValidationError("valid_from must be before valid_to")
	}

	return nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, keys...)
}
