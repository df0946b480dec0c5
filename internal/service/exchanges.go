package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kyc_arena/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, validation("Valid positive price is required")
	}
	return price.Round(2), nil
}

// ListExchanges returns exchanges newest first, optionally only active ones.
func (s *Service) ListExchanges(ctx context.Context, activeOnly bool) ([]domain.Exchange, error) {
	q := s.db.WithContext(ctx).Order("created_at desc, id desc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var exchanges []domain.Exchange
	if err := q.Find(&exchanges).Error; err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

// CreateExchange adds a platform with its price per good submission.
func (s *Service) CreateExchange(ctx context.Context, name string, price decimal.Decimal, active bool) (*domain.Exchange, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation("Exchange name is required")
	}
	price, err := normalizePrice(price)
	if err != nil {
		return nil, err
	}
	existing, err := s.findExchange(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, validation("Exchange already exists")
	}

	ex := domain.Exchange{Name: name, PriceUsdt: price, IsActive: active}
	err = s.db.WithContext(ctx).Create(&ex).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, validation("Exchange already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange: %w", err)
	}
	return &ex, nil
}

func (s *Service) getExchange(ctx context.Context, id uint) (*domain.Exchange, error) {
	var ex domain.Exchange
	err := s.db.WithContext(ctx).First(&ex, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Exchange not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return &ex, nil
}

// ToggleExchange flips whether an exchange accepts new submissions.
func (s *Service) ToggleExchange(ctx context.Context, id uint) (*domain.Exchange, error) {
	ex, err := s.getExchange(ctx, id)
	if err != nil {
		return nil, err
	}
	ex.IsActive = !ex.IsActive
	if err := s.db.WithContext(ctx).Model(ex).Update("is_active", ex.IsActive).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle exchange: %w", err)
	}
	return ex, nil
}

// UpdateExchangePrice changes the price used for future good verdicts.
func (s *Service) UpdateExchangePrice(ctx context.Context, id uint, price decimal.Decimal) (*domain.Exchange, error) {
	price, err := normalizePrice(price)
	if err != nil {
		return nil, err
	}
	ex, err := s.getExchange(ctx, id)
	if err != nil {
		return nil, err
	}
	ex.PriceUsdt = price
	if err := s.db.WithContext(ctx).Model(ex).Update("price_usdt", price).Error; err != nil {
		return nil, fmt.Errorf("failed to update exchange price: %w", err)
	}
	return ex, nil
}
