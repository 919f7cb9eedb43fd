package booking_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rally/infras/otel/mocks"
	bookingMocks "rally/internal/domains/booking/mocks"
	"rally/internal/domains/booking/model"
	"rally/internal/domains/booking/model/dto"
	"rally/internal/handlers/booking"
	gDto "rally/shared/dto"
)

func statusFilterValues(t *testing.T, group gDto.FilterGroup) []any {
	t.Helper()

	values := []any{}

	for _, raw := range group.Filters {
		filter, ok := raw.(gDto.Filter)
		require.True(t, ok)

		if filter.Field == model.FieldStatus {
			values = append(values, filter.Value)
		}
	}

	return values
}

func TestBookingHandler_GetSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := bookingMocks.NewMockBookingService(ctrl)
	mockOtel := mocks.NewOtel()

	handler := booking.New(mockService, mockOtel)

	router := chi.NewRouter()
	handler.Router(router)

	t.Run("only approved bookings regardless of the status param", func(t *testing.T) {
		var captured gDto.FilterGroup

		mockService.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
				captured = filter

				return dto.GetBookingsResponse{}, nil
			})

		request := httptest.NewRequest(http.MethodGet, "/bookings/schedule?status=PENDING&court_id=court-1&start_date=2026-09-01&end_date=2026-09-07", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		statuses := statusFilterValues(t, captured)
		require.Len(t, statuses, 1)
		assert.Equal(t, model.StatusApproved, statuses[0])
	})

	t.Run("date range without court still filters approved", func(t *testing.T) {
		var captured gDto.FilterGroup

		mockService.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
				captured = filter

				return dto.GetBookingsResponse{}, nil
			})

		request := httptest.NewRequest(http.MethodGet, "/bookings/schedule?start_date=2026-09-01&end_date=2026-09-07", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		statuses := statusFilterValues(t, captured)
		require.Len(t, statuses, 1)
		assert.Equal(t, model.StatusApproved, statuses[0])
	})

	t.Run("admin listing passes the client status through", func(t *testing.T) {
		var captured gDto.FilterGroup

		mockService.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
				captured = filter

				return dto.GetBookingsResponse{}, nil
			})

		request := httptest.NewRequest(http.MethodGet, "/bookings?status=PENDING", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		statuses := statusFilterValues(t, captured)
		require.Len(t, statuses, 1)
		assert.Equal(t, model.StatusPending, statuses[0])
	})
}
