//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/k-experience/service-reservation/internal/adapter"
	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/cache"
	"github.com/k-experience/service-reservation/internal/events"
	"github.com/k-experience/service-reservation/internal/platform/kafka"
	"github.com/k-experience/service-reservation/internal/repository"
	"github.com/k-experience/service-reservation/internal/saga"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds the wired-up reservation service components.
type bookingStack struct {
	Reservations    *application.ReservationService
	Coupons         *application.CouponService
	GroupBuys       *application.GroupBuyService
	Gateway         *adapter.MockPaymentGateway
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_reservation",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_reservation sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.ReservationModel{},
		&repository.InventoryModel{},
		&repository.CouponModel{},
		&repository.CampaignModel{},
		&repository.AffiliateModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicReservationEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full reservation service stack against the
// shared containers. Redis is left out: the availability cache degrades to
// direct database reads with a nil client.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	reservationRepo := repository.NewReservationRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	groupBuyRepo := repository.NewGormGroupBuyRepository(db)
	affiliateRepo := repository.NewGormAffiliateRepository(db)

	gateway := adapter.NewMockPaymentGateway(logger)
	producer := kafka.NewProducer(brokers, logger)
	availabilityCache := cache.NewAvailabilityCache(nil, logger)

	sagaSvc := saga.NewBookingSagaService(reservationRepo, groupBuyRepo, gateway, producer, logger)

	return &bookingStack{
		Reservations:    application.NewReservationService(reservationRepo, sagaSvc, affiliateRepo, availabilityCache, logger),
		Coupons:         application.NewCouponService(couponRepo, logger),
		GroupBuys:       application.NewGroupBuyService(groupBuyRepo, sagaSvc, producer, logger),
		Gateway:         gateway,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedInventory inserts a counter row for a date at the given fill level.
func seedInventory(t *testing.T, db *gorm.DB, date string, current, max int) {
	t.Helper()
	model := repository.InventoryModel{
		Date:         date,
		CurrentCount: current,
		MaxCapacity:  max,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed inventory")
}

// seedCoupon inserts a coupon and returns its ID.
func seedCoupon(t *testing.T, db *gorm.DB, code string, maxUsage int) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	model := repository.CouponModel{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  "percent",
		DiscountValue: 10,
		ExpiresAt:     now.AddDate(0, 1, 0),
		CurrentUsage:  0,
		MaxUsage:      maxUsage,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed coupon")
	return model.ID
}

// seedCampaign inserts an active campaign with the given participant count
// and returns its ID. Participants are named user-1..user-N with user-1 as
// leader.
func seedCampaign(t *testing.T, db *gorm.DB, visitDate string, participantCount int) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	participants := make([]map[string]interface{}, participantCount)
	for i := range participants {
		participants[i] = map[string]interface{}{
			"user_id":   fmt.Sprintf("user-%d", i+1),
			"name":      fmt.Sprintf("Member %d", i+1),
			"joined_at": now,
		}
	}
	raw, err := json.Marshal(participants)
	require.NoError(t, err)

	model := repository.CampaignModel{
		ID:           uuid.New(),
		ProductName:  "Seoul Hanbok Experience",
		UnitPrice:    55000,
		CurrentCount: participantCount,
		MaxCount:     10,
		LeaderID:     "user-1",
		Participants: raw,
		VisitDate:    visitDate,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed campaign")
	return model.ID
}

// campaignRow reads a campaign row by ID.
func campaignRow(t *testing.T, db *gorm.DB, id uuid.UUID) repository.CampaignModel {
	t.Helper()
	var model repository.CampaignModel
	require.NoError(t, db.Where("id = ?", id).First(&model).Error)
	return model
}

// createRequest builds a minimal valid reservation request for a date.
func createRequest(date string, headcount int) application.CreateReservationRequest {
	guests := make([]application.GuestRequest, headcount)
	for i := range guests {
		guests[i] = application.GuestRequest{Name: fmt.Sprintf("Guest %d", i+1)}
	}
	return application.CreateReservationRequest{
		UserID:      "user-int-test",
		ProductName: "Seoul Hanbok Experience",
		Date:        date,
		PeopleCount: headcount,
		TotalPrice:  int64(headcount) * 55000,
		Options: application.ReservationOptionsRequest{
			PaymentType: "card",
			Guests:      guests,
			GuestEmail:  "visitor@example.com",
		},
	}
}

// inventoryRow reads the counter row for a date.
func inventoryRow(t *testing.T, db *gorm.DB, date string) repository.InventoryModel {
	t.Helper()
	var model repository.InventoryModel
	require.NoError(t, db.Where("date = ?", date).First(&model).Error)
	return model
}

// reservationCount counts reservations for a date.
func reservationCount(t *testing.T, db *gorm.DB, date string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&repository.ReservationModel{}).Where("visit_date = ?", date).Count(&count).Error)
	return count
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
