package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	groupbuyDomain "github.com/k-experience/service-reservation/internal/domain/groupbuy"
	resDomain "github.com/k-experience/service-reservation/internal/domain/reservation"
	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// CampaignModel is the GORM model for group-buy campaigns.
type CampaignModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductName  string    `gorm:"type:varchar(255);not null"`
	UnitPrice    int64     `gorm:"not null"`
	CurrentCount int       `gorm:"not null;default:1"`
	MaxCount     int       `gorm:"not null;default:10"`
	LeaderID     string    `gorm:"type:varchar(64);not null;index"`
	Participants []byte    `gorm:"type:jsonb"`
	VisitDate    string    `gorm:"type:varchar(10);not null;index"`
	Secret       bool      `gorm:"not null;default:false"`
	AccessCode   string    `gorm:"type:varchar(64)"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (CampaignModel) TableName() string { return "group_buy_campaigns" }

// GormGroupBuyRepository implements groupbuy.Repository using GORM.
type GormGroupBuyRepository struct {
	db *gorm.DB
}

// NewGormGroupBuyRepository creates a new GormGroupBuyRepository.
func NewGormGroupBuyRepository(db *gorm.DB) *GormGroupBuyRepository {
	return &GormGroupBuyRepository{db: db}
}

// Save persists a new campaign.
func (r *GormGroupBuyRepository) Save(ctx context.Context, c *groupbuyDomain.Campaign) error {
	model, err := toCampaignModel(c)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID returns a campaign by ID.
func (r *GormGroupBuyRepository) FindByID(ctx context.Context, id uuid.UUID) (*groupbuyDomain.Campaign, error) {
	var model CampaignModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("campaign", id.String())
	}
	if err != nil {
		return nil, err
	}
	return toCampaignDomain(&model)
}

// AddParticipant appends the participant and increments the count inside a
// transaction holding the campaign row lock, so concurrent joins serialize
// and every increment lands. There is intentionally no upper-bound check.
func (r *GormGroupBuyRepository) AddParticipant(ctx context.Context, campaignID uuid.UUID, p groupbuyDomain.Participant) (*groupbuyDomain.Campaign, error) {
	var updated *groupbuyDomain.Campaign
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model CampaignModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", campaignID).
			First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("campaign", campaignID.String())
		}
		if err != nil {
			return err
		}

		var participants []groupbuyDomain.Participant
		if len(model.Participants) > 0 {
			if err := json.Unmarshal(model.Participants, &participants); err != nil {
				return err
			}
		}
		participants = append(participants, p)
		raw, err := json.Marshal(participants)
		if err != nil {
			return err
		}

		model.Participants = raw
		model.CurrentCount++
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&CampaignModel{}).
			Where("id = ?", campaignID).
			Updates(map[string]interface{}{
				"participants":  model.Participants,
				"current_count": model.CurrentCount,
				"updated_at":    model.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		updated, err = toCampaignDomain(&model)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListActive returns all active campaigns, newest first.
func (r *GormGroupBuyRepository) ListActive(ctx context.Context) ([]*groupbuyDomain.Campaign, error) {
	var models []CampaignModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(groupbuyDomain.StatusActive)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	campaigns := make([]*groupbuyDomain.Campaign, len(models))
	for i := range models {
		c, err := toCampaignDomain(&models[i])
		if err != nil {
			return nil, err
		}
		campaigns[i] = c
	}
	return campaigns, nil
}

// CompleteExpired batch-transitions active campaigns whose visit date has
// passed. Each campaign's transition is independent; this is one best-effort
// UPDATE, not required to be atomic across campaigns.
func (r *GormGroupBuyRepository) CompleteExpired(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&CampaignModel{}).
		Where("status = ? AND visit_date < ?",
			string(groupbuyDomain.StatusActive),
			today.UTC().Format(resDomain.DateLayout)).
		Updates(map[string]interface{}{
			"status":     string(groupbuyDomain.StatusCompleted),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func toCampaignModel(c *groupbuyDomain.Campaign) (*CampaignModel, error) {
	participants, err := json.Marshal(c.Participants())
	if err != nil {
		return nil, err
	}
	return &CampaignModel{
		ID:           c.ID(),
		ProductName:  c.ProductName(),
		UnitPrice:    c.UnitPrice(),
		CurrentCount: c.CurrentCount(),
		MaxCount:     c.MaxCount(),
		LeaderID:     c.LeaderID(),
		Participants: participants,
		VisitDate:    c.VisitDate(),
		Secret:       c.Secret(),
		AccessCode:   c.AccessCode(),
		Status:       string(c.Status()),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}, nil
}

func toCampaignDomain(m *CampaignModel) (*groupbuyDomain.Campaign, error) {
	var participants []groupbuyDomain.Participant
	if len(m.Participants) > 0 {
		if err := json.Unmarshal(m.Participants, &participants); err != nil {
			return nil, err
		}
	}
	return groupbuyDomain.Reconstruct(
		m.ID, m.ProductName, m.UnitPrice,
		m.CurrentCount, m.MaxCount, m.LeaderID, participants,
		m.VisitDate, m.Secret, m.AccessCode,
		groupbuyDomain.Status(m.Status),
		m.CreatedAt, m.UpdatedAt,
	), nil
}
