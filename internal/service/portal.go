package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"kyc_arena/internal/domain"
	"kyc_arena/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const portalCacheKey = "settings:" + domain.SettingPortalOpen

// PortalState is the global intake switch. The portal is open until an
// admin closes it.
type PortalState struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewPortalState(db *gorm.DB, cache *utils.Cache) *PortalState {
	return &PortalState{db: db, cache: cache}
}

// IsOpen reports whether users may create submissions.
func (p *PortalState) IsOpen(ctx context.Context) (bool, error) {
	var open bool
	if found, err := p.cache.Get(ctx, portalCacheKey, &open); err == nil && found {
		return open, nil
	}

	var setting domain.Setting
	err := p.db.WithContext(ctx).Where(&domain.Setting{Key: domain.SettingPortalOpen}).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		open = true
	case err != nil:
		return false, fmt.Errorf("failed to read portal status: %w", err)
	default:
		open, err = strconv.ParseBool(setting.Value)
		if err != nil {
			open = true
		}
	}
	_ = p.cache.Set(ctx, portalCacheKey, open)
	return open, nil
}

// SetOpen stores the switch position.
func (p *PortalState) SetOpen(ctx context.Context, open bool) error {
	setting := domain.Setting{Key: domain.SettingPortalOpen, Value: strconv.FormatBool(open)}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to update portal status: %w", err)
	}
	_ = p.cache.Delete(ctx, portalCacheKey)
	return nil
}
