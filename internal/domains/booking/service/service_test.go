package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rally/config"
	"rally/infras/otel/mocks"
	txMocks "rally/infras/postgres/mocks"
	bookingMocks "rally/internal/domains/booking/mocks"
	"rally/internal/domains/booking/model"
	"rally/internal/domains/booking/model/dto"
	"rally/internal/domains/booking/service"
	courtMocks "rally/internal/domains/court/mocks"
	courtModel "rally/internal/domains/court/model"
	notificationMocks "rally/internal/domains/notification/mocks"
	"rally/internal/events"
	cacheMocks "rally/shared/cache/mocks"
	"rally/shared/constant"
	"rally/shared/failure"
	"rally/shared/lock"
	gModel "rally/shared/model"
	"rally/shared/timezone"
)

func parseTime(value string) time.Time {
	parsed, err := time.Parse(constant.TimeOnlyFormat, value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func parseDate(value string) time.Time {
	parsed, err := time.Parse(constant.DateOnlyFormat, value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func activeCourt() courtModel.Court {
	return courtModel.Court{
		ID:        "court-1",
		Name:      "Court 1",
		OpenTime:  parseTime("06:00"),
		CloseTime: parseTime("22:00"),
		Active:    true,
	}
}

func pendingBooking(id string) model.Booking {
	return model.Booking{
		ID:          id,
		CourtID:     "court-1",
		UserID:      "user-1",
		BookingDate: parseDate("2026-09-01"),
		StartTime:   parseTime("10:00"),
		EndTime:     parseTime("11:00"),
		Status:      model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "user-1",
			ModifiedBy: "user-1",
		},
	}
}

func TestBookingService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCourtRepo := courtMocks.NewMockCourt(ctrl)
	mockNotification := notificationMocks.NewMockNotificationService(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockCourtRepo, mockNotification, txMocks.NewTransactor(), lock.NewKeyed(), cfg, mockCache, mockOtel)

	principal := gModel.Principal{ID: "user-1", Name: "Test User", Email: "user@example.com", Role: constant.RoleUser}

	validReq := dto.CreateBookingRequest{
		CourtID:     "court-1",
		BookingDate: "2026-09-01",
		StartTime:   "10:00",
		EndTime:     "11:00",
	}

	tests := []struct {
		name         string
		req          dto.CreateBookingRequest
		setupMock    func()
		wantErr      bool
		expectedKind string
	}{
		{
			name: "successful creation on empty schedule",
			req:  validReq,
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)

				mockRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockNotification.EXPECT().
					Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]events.DeliveryMessage{{To: "admin@example.com"}}, nil)

				mockNotification.EXPECT().
					Deliver(gomock.Any(), gomock.Any()).
					AnyTimes()

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "court not found",
			req:  validReq,
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(courtModel.Court{}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindCourtNotFound,
		},
		{
			name: "inactive court rejects bookings",
			req:  validReq,
			setupMock: func() {
				court := activeCourt()
				court.Active = false

				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(court, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindCourtInactive,
		},
		{
			name: "malformed date is a bad request",
			req: dto.CreateBookingRequest{
				CourtID:     "court-1",
				BookingDate: "not-a-date",
				StartTime:   "10:00",
				EndTime:     "11:00",
			},
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)
			},
			wantErr:      true,
			expectedKind: failure.KindBadRequest,
		},
		{
			name: "inverted window is invalid",
			req: dto.CreateBookingRequest{
				CourtID:     "court-1",
				BookingDate: "2026-09-01",
				StartTime:   "11:00",
				EndTime:     "10:00",
			},
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindInvalidWindow,
		},
		{
			name: "window outside operating hours",
			req: dto.CreateBookingRequest{
				CourtID:     "court-1",
				BookingDate: "2026-09-01",
				StartTime:   "05:00",
				EndTime:     "07:00",
			},
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindOutsideOperatingHours,
		},
		{
			name: "overlap with pending booking conflicts",
			req:  validReq,
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				existing := pendingBooking("booking-existing")
				existing.StartTime = parseTime("10:30")
				existing.EndTime = parseTime("11:30")

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{existing}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindTimeConflict,
		},
		{
			name: "back to back booking is admitted",
			req: dto.CreateBookingRequest{
				CourtID:     "court-1",
				BookingDate: "2026-09-01",
				StartTime:   "11:00",
				EndTime:     "12:00",
			},
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				existing := pendingBooking("booking-existing")

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{existing}, nil)

				mockRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockNotification.EXPECT().
					Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, nil)

				mockNotification.EXPECT().
					Deliver(gomock.Any(), gomock.Any()).
					AnyTimes()

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				mockCache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name: "dispatch failure rolls back the booking",
			req:  validReq,
			setupMock: func() {
				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)

				mockRepo.EXPECT().
					InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockNotification.EXPECT().
					Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("insert notifications failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Create(context.Background(), tt.req, principal)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)

				if tt.expectedKind != constant.Empty {
					assert.True(t, failure.IsKind(err, tt.expectedKind), "expected kind %s, got %s", tt.expectedKind, failure.GetKind(err))
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusPending, res.Status)
			assert.Equal(t, principal.ID, res.UserID)
		})
	}
}

func TestBookingService_Decide(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCourtRepo := courtMocks.NewMockCourt(ctrl)
	mockNotification := notificationMocks.NewMockNotificationService(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockCourtRepo, mockNotification, txMocks.NewTransactor(), lock.NewKeyed(), cfg, mockCache, mockOtel)

	admin := gModel.Principal{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: constant.RoleAdmin}
	member := gModel.Principal{ID: "user-2", Name: "Member", Email: "member@example.com", Role: constant.RoleUser}

	approve := dto.DecideBookingRequest{Decision: model.DecisionApprove}
	reject := dto.DecideBookingRequest{Decision: model.DecisionReject}

	expectAfterCommit := func() {
		mockNotification.EXPECT().
			Deliver(gomock.Any(), gomock.Any()).
			AnyTimes()

		mockCache.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		mockCache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()
	}

	tests := []struct {
		name           string
		principal      gModel.Principal
		req            dto.DecideBookingRequest
		setupMock      func()
		wantErr        bool
		expectedKind   string
		expectedStatus string
	}{
		{
			name:      "approve pending booking",
			principal: admin,
			req:       approve,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("booking-1"), nil).
					Times(2)

				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)

				mockRepo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockNotification.EXPECT().
					Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, nil)

				expectAfterCommit()
			},
			expectedStatus: model.StatusApproved,
		},
		{
			name:      "reject pending booking skips conflict check",
			principal: admin,
			req:       reject,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("booking-2"), nil).
					Times(2)

				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				mockRepo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				mockNotification.EXPECT().
					Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, nil)

				expectAfterCommit()
			},
			expectedStatus: model.StatusRejected,
		},
		{
			name:      "booking not found",
			principal: admin,
			req:       approve,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindBookingNotFound,
		},
		{
			name:      "non admin cannot decide",
			principal: member,
			req:       approve,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("booking-3"), nil)
			},
			wantErr:      true,
			expectedKind: failure.KindUnauthorized,
		},
		{
			name:      "already decided booking",
			principal: admin,
			req:       approve,
			setupMock: func() {
				decided := pendingBooking("booking-4")
				decided.Status = model.StatusApproved

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(decided, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindAlreadyDecided,
		},
		{
			name:      "decision landing between first read and lock is already decided",
			principal: admin,
			req:       reject,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("booking-6"), nil)

				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				decided := pendingBooking("booking-6")
				decided.Status = model.StatusApproved

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(decided, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindAlreadyDecided,
		},
		{
			name:      "approval conflicting with approved booking",
			principal: admin,
			req:       approve,
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("booking-5"), nil).
					Times(2)

				mockCourtRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeCourt(), nil)

				approved := pendingBooking("booking-other")
				approved.Status = model.StatusApproved
				approved.StartTime = parseTime("10:30")
				approved.EndTime = parseTime("11:30")

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{approved}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindTimeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Decide(context.Background(), "booking-id", tt.req, tt.principal)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)

				if tt.expectedKind != constant.Empty {
					assert.True(t, failure.IsKind(err, tt.expectedKind), "expected kind %s, got %s", tt.expectedKind, failure.GetKind(err))
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, res.Status)
			require.NotNil(t, res.DecidedBy)
			assert.Equal(t, admin.ID, *res.DecidedBy)
			assert.NotNil(t, res.DecidedAt)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCourtRepo := courtMocks.NewMockCourt(ctrl)
	mockNotification := notificationMocks.NewMockNotificationService(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockCourtRepo, mockNotification, txMocks.NewTransactor(), lock.NewKeyed(), cfg, mockCache, mockOtel)

	tests := []struct {
		name         string
		setupMock    func()
		wantErr      bool
		expectedKind string
	}{
		{
			name: "found booking round trips date and times",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("booking-1"), nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
		},
		{
			name: "missing booking",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:      true,
			expectedKind: failure.KindBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Get(context.Background(), "booking-1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, failure.IsKind(err, tt.expectedKind))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "2026-09-01", res.BookingDate)
			assert.Equal(t, "10:00", res.StartTime)
			assert.Equal(t, "11:00", res.EndTime)
		})
	}
}
