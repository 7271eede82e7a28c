package saga

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/k-experience/service-reservation/internal/adapter"
	"github.com/k-experience/service-reservation/internal/domain/groupbuy"
	resDomain "github.com/k-experience/service-reservation/internal/domain/reservation"
	"github.com/k-experience/service-reservation/internal/events"
	"github.com/k-experience/service-reservation/internal/platform/kafka"
)

const eventSource = "service-reservation"

// BookingSagaService orchestrates the payment-then-commit flows. The
// ordering is fixed: payment capture must succeed before any state is
// written, and everything after the atomic commit is best-effort.
type BookingSagaService struct {
	reservations resDomain.Repository
	groupbuys    groupbuy.Repository
	gateway      adapter.PaymentGateway
	producer     *kafka.Producer
	logger       *zap.Logger
}

// NewBookingSagaService creates a new BookingSagaService.
func NewBookingSagaService(
	reservations resDomain.Repository,
	groupbuys groupbuy.Repository,
	gateway adapter.PaymentGateway,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingSagaService {
	return &BookingSagaService{
		reservations: reservations,
		groupbuys:    groupbuys,
		gateway:      gateway,
		producer:     producer,
		logger:       logger,
	}
}

// CreateReservationSaga captures payment and then commits the reservation
// atomically (reservation + inventory + optional coupon in one transaction).
// On success it publishes a ReservationConfirmedEvent best-effort.
func (s *BookingSagaService) CreateReservationSaga(ctx context.Context, res *resDomain.Reservation, buyerEmail, buyerName string) error {
	merchantUID := adapter.NewMerchantUID()

	sg := New("create_reservation", s.logger)

	sg.AddStep(Step{
		Name: "capture_payment",
		Execute: func(ctx context.Context) error {
			result, err := s.gateway.Capture(ctx, adapter.CaptureRequest{
				MerchantUID: merchantUID,
				Name:        res.ProductName(),
				Amount:      res.TotalPrice(),
				BuyerEmail:  buyerEmail,
				BuyerName:   buyerName,
			})
			if err != nil {
				return err
			}
			if !result.Success {
				return resDomain.ErrPaymentFailed
			}
			return nil
		},
		// The gateway exposes no refund surface; merchant_uid is retained
		// for manual reconciliation if the commit below fails.
		Compensate: nil,
	})

	sg.AddStep(Step{
		Name: "commit_reservation",
		Execute: func(ctx context.Context) error {
			return s.reservations.CreateConfirmed(ctx, res)
		},
		Compensate: nil,
	})

	if err := sg.Execute(ctx); err != nil {
		return err
	}

	s.publishConfirmed(ctx, res)
	return nil
}

// CreateCampaignSaga captures the leader's deposit and then persists the
// campaign. Leading a campaign is itself a booking of the leader's deposit.
func (s *BookingSagaService) CreateCampaignSaga(ctx context.Context, campaign *groupbuy.Campaign, leaderName, leaderEmail string) error {
	merchantUID := adapter.NewMerchantUID()
	deposit := campaign.LeaderDeposit()

	sg := New("create_campaign", s.logger)

	sg.AddStep(Step{
		Name: "capture_leader_deposit",
		Execute: func(ctx context.Context) error {
			result, err := s.gateway.Capture(ctx, adapter.CaptureRequest{
				MerchantUID: merchantUID,
				Name:        campaign.ProductName(),
				Amount:      deposit,
				BuyerEmail:  leaderEmail,
				BuyerName:   leaderName,
			})
			if err != nil {
				return err
			}
			if !result.Success {
				return resDomain.ErrPaymentFailed
			}
			return nil
		},
		Compensate: nil,
	})

	sg.AddStep(Step{
		Name: "save_campaign",
		Execute: func(ctx context.Context) error {
			return s.groupbuys.Save(ctx, campaign)
		},
		Compensate: nil,
	})

	return sg.Execute(ctx)
}

// JoinCampaignSaga captures the joiner's deposit and then atomically adds
// the participant. Publishes a GroupBuyJoinedEvent best-effort.
func (s *BookingSagaService) JoinCampaignSaga(ctx context.Context, campaign *groupbuy.Campaign, userID, name, email string) (*groupbuy.Campaign, error) {
	merchantUID := adapter.NewMerchantUID()
	deposit := campaign.JoinDeposit()

	var updated *groupbuy.Campaign

	sg := New("join_campaign", s.logger)

	sg.AddStep(Step{
		Name: "capture_deposit",
		Execute: func(ctx context.Context) error {
			result, err := s.gateway.Capture(ctx, adapter.CaptureRequest{
				MerchantUID: merchantUID,
				Name:        campaign.ProductName(),
				Amount:      deposit,
				BuyerEmail:  email,
				BuyerName:   name,
			})
			if err != nil {
				return err
			}
			if !result.Success {
				return resDomain.ErrPaymentFailed
			}
			return nil
		},
		Compensate: nil,
	})

	sg.AddStep(Step{
		Name: "add_participant",
		Execute: func(ctx context.Context) error {
			var err error
			updated, err = s.groupbuys.AddParticipant(ctx, campaign.ID(), groupbuy.Participant{
				UserID:   userID,
				Name:     name,
				JoinedAt: time.Now().UTC(),
			})
			return err
		},
		Compensate: nil,
	})

	if err := sg.Execute(ctx); err != nil {
		return nil, err
	}

	s.publishJoined(ctx, updated, userID)
	return updated, nil
}

// publishConfirmed publishes the post-commit event. Failures are logged and
// swallowed: the reservation stays valid whatever happens downstream.
func (s *BookingSagaService) publishConfirmed(ctx context.Context, res *resDomain.Reservation) {
	event := events.ReservationConfirmedEvent{
		ReservationID: res.ID(),
		UserID:        res.UserID(),
		ProductName:   res.ProductName(),
		VisitDate:     res.VisitDate(),
		Headcount:     res.Headcount(),
		TotalPrice:    res.TotalPrice(),
		NotifyEmail:   res.NotifyEmail(),
		OccurredAt:    time.Now().UTC(),
	}
	ce, err := kafka.NewCloudEvent(eventSource, events.ReservationConfirmed, event)
	if err != nil {
		s.logger.Error("failed to create reservation confirmed event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicReservationEvents, ce); err != nil {
		s.logger.Warn("failed to publish reservation confirmed event",
			zap.String("reservation_id", res.ID().String()),
			zap.Error(err),
		)
	}
}

func (s *BookingSagaService) publishJoined(ctx context.Context, campaign *groupbuy.Campaign, userID string) {
	event := events.GroupBuyJoinedEvent{
		CampaignID:   campaign.ID(),
		UserID:       userID,
		CurrentCount: campaign.CurrentCount(),
		DiscountRate: campaign.DiscountRate(),
		OccurredAt:   time.Now().UTC(),
	}
	ce, err := kafka.NewCloudEvent(eventSource, events.GroupBuyJoined, event)
	if err != nil {
		s.logger.Error("failed to create group buy joined event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicReservationEvents, ce); err != nil {
		s.logger.Warn("failed to publish group buy joined event",
			zap.String("campaign_id", campaign.ID().String()),
			zap.Error(err),
		)
	}
}

// PublishCancelled publishes a ReservationCancelledEvent best-effort.
func (s *BookingSagaService) PublishCancelled(ctx context.Context, reservationID uuid.UUID, userID string) {
	event := events.ReservationCancelledEvent{
		ReservationID: reservationID,
		UserID:        userID,
		OccurredAt:    time.Now().UTC(),
	}
	ce, err := kafka.NewCloudEvent(eventSource, events.ReservationCancelled, event)
	if err != nil {
		s.logger.Error("failed to create reservation cancelled event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicReservationEvents, ce); err != nil {
		s.logger.Warn("failed to publish reservation cancelled event", zap.Error(err))
	}
}
