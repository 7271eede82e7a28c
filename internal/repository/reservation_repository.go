package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	couponDomain "github.com/k-experience/service-reservation/internal/domain/coupon"
	"github.com/k-experience/service-reservation/internal/domain/inventory"
	resDomain "github.com/k-experience/service-reservation/internal/domain/reservation"
	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"type:varchar(64);not null;index"`
	ProductName string    `gorm:"type:varchar(255);not null"`
	VisitDate   string    `gorm:"type:varchar(10);not null;index"`
	Headcount   int       `gorm:"not null"`
	TotalPrice  int64     `gorm:"not null"`
	Options     []byte    `gorm:"type:jsonb"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	Survey      []byte    `gorm:"type:jsonb"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (ReservationModel) TableName() string { return "reservations" }

// InventoryModel is the GORM model for the per-date capacity counters.
type InventoryModel struct {
	Date         string `gorm:"type:varchar(10);primaryKey"`
	CurrentCount int    `gorm:"not null;default:0"`
	MaxCapacity  int    `gorm:"not null;default:50"`
}

// TableName sets the table name.
func (InventoryModel) TableName() string { return "inventory_counters" }

// ReservationRepositoryImpl is the GORM-based reservation repository.
type ReservationRepositoryImpl struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *gorm.DB) *ReservationRepositoryImpl {
	return &ReservationRepositoryImpl{db: db}
}

// CreateConfirmed commits the reservation, the inventory counter update, and
// the optional coupon consumption in a single database transaction. The
// inventory row is locked for the duration, so concurrent reservations for
// the same date serialize here; if the post-write count would exceed
// capacity the whole transaction rolls back with ErrSoldOut and nothing is
// observable. Likewise an exhausted coupon rolls everything back with
// ErrUsageLimitReached.
func (r *ReservationRepositoryImpl) CreateConfirmed(ctx context.Context, res *resDomain.Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv InventoryModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ?", res.VisitDate()).
			First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lazily create the counter. Two first bookings for the same date
			// can race past the locked read above, so the insert tolerates a
			// concurrent winner and the row is re-read under the lock either
			// way.
			seed := InventoryModel{
				Date:         res.VisitDate(),
				CurrentCount: 0,
				MaxCapacity:  inventory.DefaultMaxCapacity,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("date = ?", res.VisitDate()).
				First(&inv).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if inv.CurrentCount+res.Headcount() > inv.MaxCapacity {
			return resDomain.ErrSoldOut
		}

		if couponID := res.Options().CouponID; couponID != nil {
			result := tx.Model(&CouponModel{}).
				Where("id = ? AND active = ? AND current_usage < max_usage", *couponID, true).
				Updates(map[string]interface{}{
					"current_usage": gorm.Expr("current_usage + 1"),
					"updated_at":    time.Now().UTC(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Zero rows means either an exhausted coupon or one that no
				// longer redeems at all; re-read to report which.
				var c CouponModel
				err := tx.Where("id = ?", *couponID).First(&c).Error
				if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !c.Active) {
					return couponDomain.ErrInvalidCoupon
				}
				if err != nil {
					return err
				}
				return couponDomain.ErrUsageLimitReached
			}
		}

		model, err := toReservationModel(res)
		if err != nil {
			return err
		}
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		return tx.Model(&InventoryModel{}).
			Where("date = ?", res.VisitDate()).
			Update("current_count", inv.CurrentCount+res.Headcount()).Error
	})
}

// FindByID retrieves a reservation by its ID.
func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*resDomain.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("reservation", id.String())
		}
		return nil, err
	}
	return toReservationDomain(&model)
}

// Update persists status or survey changes to an existing reservation.
func (r *ReservationRepositoryImpl) Update(ctx context.Context, res *resDomain.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"survey":     model.Survey,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("reservation", model.ID.String())
	}
	return nil
}

// ListByUser returns a user's reservations, newest first.
func (r *ReservationRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*resDomain.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toReservationDomainSlice(models)
}

// ListAll returns all reservations with pagination (admin).
func (r *ReservationRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*resDomain.Reservation, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&ReservationModel{}).Count(&total)

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	reservations, err := toReservationDomainSlice(models)
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// GetStats returns total revenue from non-cancelled reservations plus a
// count by status (admin).
func (r *ReservationRepositoryImpl) GetStats(ctx context.Context) (int64, map[string]int64, error) {
	var totalRevenue int64
	r.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("status <> ?", string(resDomain.StatusCancelled)).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&totalRevenue)

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return totalRevenue, counts, nil
}

// InventoryForDate returns the advisory counter for a date. Absent rows
// default to an empty counter with the default capacity; this read is for
// display only, the authoritative check happens in CreateConfirmed.
func (r *ReservationRepositoryImpl) InventoryForDate(ctx context.Context, date string) (*inventory.Counter, error) {
	var model InventoryModel
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inventory.NewCounter(date), nil
	}
	if err != nil {
		return nil, err
	}
	return &inventory.Counter{
		Date:         model.Date,
		CurrentCount: model.CurrentCount,
		MaxCapacity:  model.MaxCapacity,
	}, nil
}

func toReservationModel(res *resDomain.Reservation) (*ReservationModel, error) {
	options, err := json.Marshal(res.Options())
	if err != nil {
		return nil, err
	}
	var survey []byte
	if res.Survey() != nil {
		survey, err = json.Marshal(res.Survey())
		if err != nil {
			return nil, err
		}
	}
	return &ReservationModel{
		ID:          res.ID(),
		UserID:      res.UserID(),
		ProductName: res.ProductName(),
		VisitDate:   res.VisitDate(),
		Headcount:   res.Headcount(),
		TotalPrice:  res.TotalPrice(),
		Options:     options,
		Status:      string(res.Status()),
		Survey:      survey,
		CreatedAt:   res.CreatedAt(),
		UpdatedAt:   res.UpdatedAt(),
	}, nil
}

func toReservationDomain(model *ReservationModel) (*resDomain.Reservation, error) {
	var options resDomain.Options
	if len(model.Options) > 0 {
		if err := json.Unmarshal(model.Options, &options); err != nil {
			return nil, err
		}
	}
	var survey *resDomain.SurveyAnswers
	if len(model.Survey) > 0 {
		survey = &resDomain.SurveyAnswers{}
		if err := json.Unmarshal(model.Survey, survey); err != nil {
			return nil, err
		}
	}
	return resDomain.Reconstruct(
		model.ID, model.UserID, model.ProductName, model.VisitDate,
		model.Headcount, model.TotalPrice, options,
		resDomain.Status(model.Status), survey,
		model.CreatedAt, model.UpdatedAt,
	), nil
}

func toReservationDomainSlice(models []ReservationModel) ([]*resDomain.Reservation, error) {
	reservations := make([]*resDomain.Reservation, len(models))
	for i := range models {
		res, err := toReservationDomain(&models[i])
		if err != nil {
			return nil, err
		}
		reservations[i] = res
	}
	return reservations, nil
}
