package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	groupbuyDomain "github.com/k-experience/service-reservation/internal/domain/groupbuy"
	"github.com/k-experience/service-reservation/internal/events"
	"github.com/k-experience/service-reservation/internal/platform/kafka"
	"github.com/k-experience/service-reservation/internal/saga"
)

// CreateCampaignRequest holds data to start a group-buy campaign.
type CreateCampaignRequest struct {
	ProductName string `json:"productName" binding:"required"`
	UnitPrice   int64  `json:"unitPrice" binding:"gte=0"`
	VisitDate   string `json:"visitDate" binding:"required"`
	LeaderName  string `json:"leaderName" binding:"required"`
	LeaderEmail string `json:"leaderEmail"`
	Secret      bool   `json:"secret"`
	AccessCode  string `json:"accessCode"`
}

// JoinCampaignRequest holds data to join a campaign.
type JoinCampaignRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
}

// CampaignDTO is the API representation of a campaign. The access code is
// never exposed.
type CampaignDTO struct {
	ID           uuid.UUID                    `json:"id"`
	ProductName  string                       `json:"product_name"`
	UnitPrice    int64                        `json:"unit_price"`
	CurrentCount int                          `json:"current_count"`
	MaxCount     int                          `json:"max_count"`
	LeaderID     string                       `json:"leader_id"`
	Participants []groupbuyDomain.Participant `json:"participants"`
	VisitDate    string                       `json:"visit_date"`
	Secret       bool                         `json:"secret"`
	Status       string                       `json:"status"`
	DiscountRate float64                      `json:"discount_rate"`
	JoinDeposit  int64                        `json:"join_deposit"`
	CreatedAt    time.Time                    `json:"created_at"`
}

// GroupBuyService handles group-buy campaign use cases.
type GroupBuyService struct {
	repo     groupbuyDomain.Repository
	sagaSvc  *saga.BookingSagaService
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewGroupBuyService creates a new GroupBuyService.
func NewGroupBuyService(
	repo groupbuyDomain.Repository,
	sagaSvc *saga.BookingSagaService,
	producer *kafka.Producer,
	logger *zap.Logger,
) *GroupBuyService {
	return &GroupBuyService{repo: repo, sagaSvc: sagaSvc, producer: producer, logger: logger}
}

// CreateCampaign starts a campaign led by the given user. The leader's
// deposit is captured before the campaign is persisted.
func (s *GroupBuyService) CreateCampaign(ctx context.Context, leaderID string, req CreateCampaignRequest) (*CampaignDTO, error) {
	campaign, err := groupbuyDomain.New(leaderID, req.LeaderName, req.ProductName, req.VisitDate, req.UnitPrice, req.Secret, req.AccessCode)
	if err != nil {
		return nil, err
	}

	if err := s.sagaSvc.CreateCampaignSaga(ctx, campaign, req.LeaderName, req.LeaderEmail); err != nil {
		return nil, err
	}

	s.logger.Info("group buy campaign created",
		zap.String("campaign_id", campaign.ID().String()),
		zap.String("leader_id", leaderID),
	)
	dto := toCampaignDTO(campaign)
	return &dto, nil
}

// JoinCampaign validates the joiner, captures the deposit, and atomically
// increments the participant count. There is no hard cap on joins; the
// discount just stops growing at 30%.
func (s *GroupBuyService) JoinCampaign(ctx context.Context, campaignID uuid.UUID, userID string, req JoinCampaignRequest) (*CampaignDTO, error) {
	campaign, err := s.repo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := campaign.CanJoin(userID, req.AccessCode); err != nil {
		return nil, err
	}

	updated, err := s.sagaSvc.JoinCampaignSaga(ctx, campaign, userID, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	dto := toCampaignDTO(updated)
	return &dto, nil
}

// GetCampaign retrieves a campaign by ID.
func (s *GroupBuyService) GetCampaign(ctx context.Context, id uuid.UUID) (*CampaignDTO, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toCampaignDTO(campaign)
	return &dto, nil
}

// ListActiveCampaigns returns all active campaigns.
func (s *GroupBuyService) ListActiveCampaigns(ctx context.Context) ([]CampaignDTO, error) {
	campaigns, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]CampaignDTO, len(campaigns))
	for i, c := range campaigns {
		dtos[i] = toCampaignDTO(c)
	}
	return dtos, nil
}

// SweepExpired batch-completes active campaigns whose visit date has
// passed. Failures are logged only; each sweep run is independent.
func (s *GroupBuyService) SweepExpired(ctx context.Context) {
	count, err := s.repo.CompleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("group buy expiry sweep failed", zap.Error(err))
		return
	}
	if count == 0 {
		return
	}

	s.logger.Info("group buy campaigns completed", zap.Int64("count", count))

	ce, err := kafka.NewCloudEvent("service-reservation", events.GroupBuyCompleted, events.GroupBuyCompletedEvent{
		CompletedCount: count,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to create group buy completed event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicReservationEvents, ce); err != nil {
		s.logger.Warn("failed to publish group buy completed event", zap.Error(err))
	}
}

func toCampaignDTO(c *groupbuyDomain.Campaign) CampaignDTO {
	return CampaignDTO{
		ID:           c.ID(),
		ProductName:  c.ProductName(),
		UnitPrice:    c.UnitPrice(),
		CurrentCount: c.CurrentCount(),
		MaxCount:     c.MaxCount(),
		LeaderID:     c.LeaderID(),
		Participants: c.Participants(),
		VisitDate:    c.VisitDate(),
		Secret:       c.Secret(),
		Status:       string(c.Status()),
		DiscountRate: c.DiscountRate(),
		JoinDeposit:  c.JoinDeposit(),
		CreatedAt:    c.CreatedAt(),
	}
}
