package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rally/config"
	kafkaMocks "rally/infras/kafka/mocks"
	"rally/infras/otel/mocks"
	notificationMocks "rally/internal/domains/notification/mocks"
	"rally/internal/domains/notification/model"
	"rally/internal/domains/notification/service"
	userMocks "rally/internal/domains/user/mocks"
	userModel "rally/internal/domains/user/model"
	"rally/internal/events"
	"rally/shared/constant"
	gDto "rally/shared/dto"
	"rally/shared/failure"
)

func requestedEvent() events.BookingEvent {
	return events.BookingEvent{
		Type:          events.TypeBookingRequested,
		BookingID:     "booking-1",
		CourtID:       "court-1",
		CourtName:     "Court 1",
		BookingDate:   "2026-09-01",
		StartTime:     "10:00",
		EndTime:       "11:00",
		RequesterID:   "user-1",
		RequesterName: "Test User",
		ActorID:       "user-1",
	}
}

func TestNotificationService_Dispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := notificationMocks.NewMockNotification(ctrl)
	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, mockUserRepo, cfg, mockOtel, mockKafka)

	admins := []userModel.User{
		{ID: "admin-1", Email: "admin1@example.com", FullName: "Admin One", Role: constant.RoleAdmin, Active: true},
		{ID: "admin-2", Email: "admin2@example.com", FullName: "Admin Two", Role: constant.RoleAdmin, Active: true},
	}

	t.Run("booking request fans out to all admins", func(t *testing.T) {
		mockUserRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(admins, nil)

		var inserted []model.Notification

		mockRepo.EXPECT().
			InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, models []model.Notification) error {
				inserted = models

				return nil
			})

		messages, err := svc.Dispatch(context.Background(), nil, requestedEvent())

		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Len(t, inserted, 2)

		for i, notification := range inserted {
			assert.Equal(t, admins[i].ID, notification.UserID)
			assert.Equal(t, "booking-1", notification.BookingID)
			assert.Equal(t, events.TypeBookingRequested, notification.EventType)
			assert.Equal(t, "New booking request", notification.Title)
			assert.False(t, notification.IsRead)
			assert.Equal(t, notification.ID, messages[i].NotificationID)
			assert.Equal(t, admins[i].Email, messages[i].To)
			assert.Equal(t, notification.Title, messages[i].Subject)
			assert.Equal(t, notification.Message, messages[i].Body)
		}

		assert.Equal(t, "New booking request", messages[0].Subject)
		assert.Contains(t, messages[0].Body, "Test User requested Court 1")
	})

	t.Run("approval notifies the requester", func(t *testing.T) {
		event := requestedEvent()
		event.Type = events.TypeBookingApproved
		event.ActorID = "admin-1"

		mockUserRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(userModel.User{ID: "user-1", Email: "user@example.com", FullName: "Test User"}, nil)

		var inserted []model.Notification

		mockRepo.EXPECT().
			InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, models []model.Notification) error {
				inserted = models

				return nil
			})

		messages, err := svc.Dispatch(context.Background(), nil, event)

		require.NoError(t, err)
		require.Len(t, messages, 1)
		require.Len(t, inserted, 1)
		assert.Equal(t, "user@example.com", messages[0].To)
		assert.Equal(t, "Booking approved", messages[0].Subject)
		assert.Equal(t, "Booking approved", inserted[0].Title)
		assert.Contains(t, messages[0].Body, "has been approved")
	})

	t.Run("rejection notifies the requester", func(t *testing.T) {
		event := requestedEvent()
		event.Type = events.TypeBookingRejected
		event.ActorID = "admin-1"

		mockUserRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(userModel.User{ID: "user-1", Email: "user@example.com", FullName: "Test User"}, nil)

		mockRepo.EXPECT().
			InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		messages, err := svc.Dispatch(context.Background(), nil, event)

		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "Booking rejected", messages[0].Subject)
		assert.Contains(t, messages[0].Body, "has been rejected")
	})

	t.Run("no recipients inserts nothing", func(t *testing.T) {
		mockUserRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]userModel.User{}, nil)

		messages, err := svc.Dispatch(context.Background(), nil, requestedEvent())

		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("insert failure propagates", func(t *testing.T) {
		mockUserRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(admins, nil)

		mockRepo.EXPECT().
			InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("database error"))

		_, err := svc.Dispatch(context.Background(), nil, requestedEvent())

		assert.Error(t, err)
	})
}

func TestNotificationService_Deliver(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := notificationMocks.NewMockNotification(ctrl)
	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, mockUserRepo, cfg, mockOtel, mockKafka)

	messages := []events.DeliveryMessage{
		{NotificationID: "notification-1", To: "admin1@example.com", Subject: "New booking request", Body: "body"},
		{NotificationID: "notification-2", To: "admin2@example.com", Subject: "New booking request", Body: "body"},
	}

	t.Run("publishes one message per recipient", func(t *testing.T) {
		mockKafka.EXPECT().
			SendMessages(gomock.Any(), events.TopicNotificationDelivery, gomock.Any(), gomock.Any()).
			Return(nil)

		svc.Deliver(context.Background(), messages)
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		mockKafka.EXPECT().
			SendMessages(gomock.Any(), events.TopicNotificationDelivery, gomock.Any(), gomock.Any()).
			Return(errors.New("broker unavailable"))

		svc.Deliver(context.Background(), messages)
	})

	t.Run("empty batch publishes nothing", func(t *testing.T) {
		svc.Deliver(context.Background(), nil)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := notificationMocks.NewMockNotification(ctrl)
	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, mockUserRepo, cfg, mockOtel, mockKafka)

	tests := []struct {
		name         string
		setupMock    func()
		wantErr      bool
		expectedKind string
	}{
		{
			name: "marks unread notification",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Notification{ID: "notification-1", UserID: "user-1", IsRead: false}, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "already read is a no-op",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Notification{ID: "notification-1", UserID: "user-1", IsRead: true}, nil)
			},
		},
		{
			name: "not found for other user's notification",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Notification{}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.MarkRead(context.Background(), "notification-1", "user-1")

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, failure.IsKind(err, tt.expectedKind))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := notificationMocks.NewMockNotification(ctrl)
	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, mockUserRepo, cfg, mockOtel, mockKafka)

	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	assert.NoError(t, svc.MarkAllRead(context.Background(), "user-1"))
}

func TestNotificationService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := notificationMocks.NewMockNotification(ctrl)
	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, mockUserRepo, cfg, mockOtel, mockKafka)

	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirDesc}

	t.Run("lists notifications for owner", func(t *testing.T) {
		mockRepo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		mockRepo.EXPECT().
			GetAll(gomock.Any(), params, gomock.Any()).
			Return([]model.Notification{{ID: "notification-1", UserID: "user-1", Message: "msg"}}, nil)

		res, err := svc.GetAll(context.Background(), "user-1", params, false)

		require.NoError(t, err)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, 1, res.TotalData)
	})

	t.Run("count error propagates", func(t *testing.T) {
		mockRepo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(0, errors.New("database error"))

		_, err := svc.GetAll(context.Background(), "user-1", params, true)

		assert.Error(t, err)
	})
}
