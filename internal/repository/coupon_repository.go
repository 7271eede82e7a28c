package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	couponDomain "github.com/k-experience/service-reservation/internal/domain/coupon"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code          string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountType  string    `gorm:"type:varchar(20);not null"`
	DiscountValue int64     `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"type:timestamptz;not null"`
	CurrentUsage  int       `gorm:"not null;default:0"`
	MaxUsage      int       `gorm:"not null"`
	Active        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (CouponModel) TableName() string { return "coupons" }

// GormCouponRepository implements coupon.Repository using GORM.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Save persists a new coupon.
func (r *GormCouponRepository) Save(ctx context.Context, c *couponDomain.Coupon) error {
	model := toCouponModel(c)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByCode returns a coupon by exact code match (case-insensitive input,
// codes are stored uppercase).
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, couponDomain.ErrInvalidCoupon
	}
	if err != nil {
		return nil, err
	}
	return toCouponDomain(&model), nil
}

// FindByID returns a coupon by ID.
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, couponDomain.ErrInvalidCoupon
	}
	if err != nil {
		return nil, err
	}
	return toCouponDomain(&model), nil
}

// ListActive returns unexpired active coupons with remaining usage.
func (r *GormCouponRepository) ListActive(ctx context.Context) ([]*couponDomain.Coupon, error) {
	var models []CouponModel
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Where("active = ? AND expires_at >= ?", true, now).
		Where("current_usage < max_usage").
		Find(&models).Error; err != nil {
		return nil, err
	}

	coupons := make([]*couponDomain.Coupon, len(models))
	for i, m := range models {
		coupons[i] = toCouponDomain(&m)
	}
	return coupons, nil
}

func toCouponModel(c *couponDomain.Coupon) CouponModel {
	return CouponModel{
		ID:            c.ID(),
		Code:          c.Code(),
		DiscountType:  string(c.DiscountType()),
		DiscountValue: c.DiscountValue(),
		ExpiresAt:     c.ExpiresAt(),
		CurrentUsage:  c.CurrentUsage(),
		MaxUsage:      c.MaxUsage(),
		Active:        c.Active(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func toCouponDomain(m *CouponModel) *couponDomain.Coupon {
	return couponDomain.Reconstruct(
		m.ID, m.Code, couponDomain.DiscountType(m.DiscountType),
		m.DiscountValue, m.ExpiresAt,
		m.CurrentUsage, m.MaxUsage, m.Active,
		m.CreatedAt, m.UpdatedAt,
	)
}
