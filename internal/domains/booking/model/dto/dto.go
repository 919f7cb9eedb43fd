package dto

import (
	"time"

	"github.com/google/uuid"

	"rally/internal/domains/booking/model"
	"rally/shared"
	"rally/shared/constant"
	gDto "rally/shared/dto"
	gModel "rally/shared/model"
	"rally/shared/timezone"
)

type CreateBookingRequest struct {
	CourtID     string `json:"court_id"     validate:"required"`
	BookingDate string `json:"booking_date" validate:"required"`
	StartTime   string `json:"start_time"   validate:"required"`
	EndTime     string `json:"end_time"     validate:"required"`
	Purpose     string `json:"purpose"      validate:"omitempty,max=255"`
}

func (c *CreateBookingRequest) ToModel(principal gModel.Principal) (model.Booking, error) {
	bookingDate, err := time.Parse(constant.DateOnlyFormat, c.BookingDate)
	if err != nil {
		return model.Booking{}, err
	}

	startTime, err := time.Parse(constant.TimeOnlyFormat, c.StartTime)
	if err != nil {
		return model.Booking{}, err
	}

	endTime, err := time.Parse(constant.TimeOnlyFormat, c.EndTime)
	if err != nil {
		return model.Booking{}, err
	}

	return model.Booking{
		ID:          uuid.NewString(),
		CourtID:     c.CourtID,
		UserID:      principal.ID,
		BookingDate: bookingDate,
		StartTime:   startTime,
		EndTime:     endTime,
		Purpose:     c.Purpose,
		Status:      model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  principal.ID,
			ModifiedBy: principal.ID,
		},
	}, nil
}

type DecideBookingRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
}

type BookingResponse struct {
	ID          string  `json:"id"`
	CourtID     string  `json:"court_id"`
	UserID      string  `json:"user_id"`
	BookingDate string  `json:"booking_date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Purpose     string  `json:"purpose"`
	Status      string  `json:"status"`
	DecidedAt   *string `json:"decided_at,omitempty"`
	DecidedBy   *string `json:"decided_by,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.CourtID = model.CourtID
	r.UserID = model.UserID
	r.BookingDate = model.BookingDate.Format(constant.DateOnlyFormat)
	r.StartTime = model.StartTime.Format(constant.TimeOnlyFormat)
	r.EndTime = model.EndTime.Format(constant.TimeOnlyFormat)
	r.Purpose = model.Purpose
	r.Status = model.Status
	r.DecidedBy = model.DecidedBy

	if model.DecidedAt != nil {
		decidedAt := model.DecidedAt.Format(constant.DateFormat)
		r.DecidedAt = &decidedAt
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
