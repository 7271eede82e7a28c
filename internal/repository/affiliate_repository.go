package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	affiliateDomain "github.com/k-experience/service-reservation/internal/domain/affiliate"
	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// AffiliateModel is the GORM model for affiliate partners.
type AffiliateModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code           string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Clicks         int64     `gorm:"not null;default:0"`
	Sales          int64     `gorm:"not null;default:0"`
	TotalRevenue   int64     `gorm:"not null;default:0"`
	CommissionRate float64   `gorm:"not null;default:0.1"`
	CreatedAt      time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt      time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (AffiliateModel) TableName() string { return "affiliate_partners" }

// GormAffiliateRepository implements affiliate.Repository using GORM. The
// counter updates are deliberately plain single-statement writes; the
// attribution contract tolerates lost updates.
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewGormAffiliateRepository creates a new GormAffiliateRepository.
func NewGormAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// Save persists a new partner.
func (r *GormAffiliateRepository) Save(ctx context.Context, p *affiliateDomain.Partner) error {
	model := AffiliateModel{
		ID:             p.ID(),
		Code:           p.Code(),
		Name:           p.Name(),
		Clicks:         p.Clicks(),
		Sales:          p.Sales(),
		TotalRevenue:   p.TotalRevenue(),
		CommissionRate: p.CommissionRate(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByCode returns a partner by referral code.
func (r *GormAffiliateRepository) FindByCode(ctx context.Context, code string) (*affiliateDomain.Partner, error) {
	var model AffiliateModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("affiliate partner", code)
	}
	if err != nil {
		return nil, err
	}
	return affiliateDomain.Reconstruct(
		model.ID, model.Code, model.Name,
		model.Clicks, model.Sales, model.TotalRevenue,
		model.CommissionRate, model.CreatedAt, model.UpdatedAt,
	), nil
}

// IncrementClicks bumps the click counter for a referral code.
func (r *GormAffiliateRepository) IncrementClicks(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Model(&AffiliateModel{}).
		Where("code = ?", strings.ToLower(strings.TrimSpace(code))).
		Updates(map[string]interface{}{
			"clicks":     gorm.Expr("clicks + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
}

// RecordSale bumps the sale counter and attributed revenue.
func (r *GormAffiliateRepository) RecordSale(ctx context.Context, code string, revenue int64) error {
	return r.db.WithContext(ctx).Model(&AffiliateModel{}).
		Where("code = ?", strings.ToLower(strings.TrimSpace(code))).
		Updates(map[string]interface{}{
			"sales":         gorm.Expr("sales + 1"),
			"total_revenue": gorm.Expr("total_revenue + ?", revenue),
			"updated_at":    time.Now().UTC(),
		}).Error
}
