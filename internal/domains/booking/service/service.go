package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"rally/config"
	"rally/infras/otel"
	"rally/infras/postgres"
	"rally/internal/domains/booking/model"
	"rally/internal/domains/booking/model/dto"
	"rally/internal/domains/booking/repository"
	"rally/internal/domains/booking/schedule"
	courtModel "rally/internal/domains/court/model"
	courtRepo "rally/internal/domains/court/repository"
	notificationService "rally/internal/domains/notification/service"
	"rally/internal/events"
	"rally/shared"
	"rally/shared/cache"
	"rally/shared/constant"
	gDto "rally/shared/dto"
	"rally/shared/failure"
	"rally/shared/lock"
	gModel "rally/shared/model"
	"rally/shared/timezone"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"

	// Upper bound when loading one court's schedule for a single date.
	maxDayBookings = 500
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest, principal gModel.Principal) (dto.BookingResponse, error)
	Decide(ctx context.Context, id string, req dto.DecideBookingRequest, principal gModel.Principal) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo         repository.Booking
	courtRepo    courtRepo.Court
	notification notificationService.Notification
	transactor   postgres.Transactor
	locks        *lock.Keyed
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	courtRepo courtRepo.Court,
	notification notificationService.Notification,
	transactor postgres.Transactor,
	locks *lock.Keyed,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		courtRepo:    courtRepo,
		notification: notification,
		transactor:   transactor,
		locks:        locks,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// Create admits and persists a new PENDING booking. The conflict check and
// the insert run under a per court and date lock so two overlapping requests
// cannot both pass the check. The booking row and its notification rows
// commit in one transaction; delivery happens after commit and is best
// effort.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest, principal gModel.Principal) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	court, err := s.courtRepo.Get(ctx, shared.FilterByID(req.CourtID, courtModel.FieldID, courtModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get court")

		return res, fmt.Errorf("failed to get court: %w", err)
	}

	if court.ID == constant.Empty {
		return res, failure.New(http.StatusNotFound, failure.KindCourtNotFound, "court not found") // nolint:wrapcheck
	}

	if !court.Active {
		return res, failure.New(http.StatusUnprocessableEntity, failure.KindCourtInactive, "court is not accepting bookings") // nolint:wrapcheck
	}

	booking, err := req.ToModel(principal)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	unlock := s.locks.Lock(lock.Key(court.ID, req.BookingDate))
	defer unlock()

	occupied, err := s.occupiedIntervals(ctx, court.ID, booking.BookingDate, []string{model.StatusPending, model.StatusApproved}, constant.Empty)
	if err != nil {
		return res, err
	}

	candidate := schedule.Interval{Start: booking.StartTime, End: booking.EndTime}
	if err = schedule.Admissible(candidate, court.OpenTime, court.CloseTime, occupied); err != nil {
		return res, err
	}

	event := s.buildEvent(events.TypeBookingRequested, booking, court, principal.Name, principal.ID)

	var messages []events.DeliveryMessage

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Msg("failed to insert booking")

			return fmt.Errorf("failed to insert booking: %w", err)
		}

		messages, err = s.notification.Dispatch(ctx, tx, event)

		return err
	})
	if err != nil {
		return res, err
	}

	s.afterCommit(ctx, messages, booking.ID)

	res.FromModel(booking)

	return res, nil
}

// Decide applies an admin's APPROVE or REJECT decision to a PENDING booking.
// The status is re-read under the same keyed lock used at creation, so
// concurrent decisions on one booking cannot both land, and approval
// re-checks the window against APPROVED bookings so two pending overlaps can
// never both be approved.
func (s *serviceImpl) Decide(ctx context.Context, id string, req dto.DecideBookingRequest, principal gModel.Principal) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Decide")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.New(http.StatusNotFound, failure.KindBookingNotFound, "booking not found") // nolint:wrapcheck
	}

	if !principal.IsAdmin() {
		return res, failure.New(http.StatusForbidden, failure.KindUnauthorized, "only admins can decide bookings") // nolint:wrapcheck
	}

	if booking.Status != model.StatusPending {
		return res, failure.New(http.StatusConflict, failure.KindAlreadyDecided, fmt.Sprintf("booking is already %s", booking.Status)) // nolint:wrapcheck
	}

	court, err := s.courtRepo.Get(ctx, shared.FilterByID(booking.CourtID, courtModel.FieldID, courtModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get court")

		return res, fmt.Errorf("failed to get court: %w", err)
	}

	unlock := s.locks.Lock(lock.Key(booking.CourtID, booking.BookingDate.Format(constant.DateOnlyFormat)))
	defer unlock()

	// A concurrent decision may have landed between the first read and the
	// lock. Re-read under the lock so a terminal status is never overwritten.
	booking, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.Status != model.StatusPending {
		return res, failure.New(http.StatusConflict, failure.KindAlreadyDecided, fmt.Sprintf("booking is already %s", booking.Status)) // nolint:wrapcheck
	}

	status := model.StatusRejected
	eventType := events.TypeBookingRejected

	if req.Decision == model.DecisionApprove {
		status = model.StatusApproved
		eventType = events.TypeBookingApproved

		// The schedule may have gained approved bookings since this one was
		// requested. Only approved windows block approval.
		occupied, err := s.occupiedIntervals(ctx, booking.CourtID, booking.BookingDate, []string{model.StatusApproved}, booking.ID)
		if err != nil {
			return res, err
		}

		candidate := schedule.Interval{Start: booking.StartTime, End: booking.EndTime}
		for _, o := range occupied {
			if candidate.Overlaps(o) {
				return res, failure.New(http.StatusConflict, failure.KindTimeConflict, "booking window conflicts with an approved booking") // nolint:wrapcheck
			}
		}
	}

	now := timezone.Now()
	decidedBy := principal.ID

	booking.Status = status
	booking.DecidedAt = &now
	booking.DecidedBy = &decidedBy
	booking.ModifiedAt = now
	booking.ModifiedBy = principal.ID

	updatedFields := map[string]any{
		model.FieldStatus:        status,
		model.FieldDecidedAt:     now,
		model.FieldDecidedBy:     decidedBy,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: principal.ID,
	}

	event := s.buildEvent(eventType, booking, court, constant.Empty, principal.ID)

	// The update only touches rows still in PENDING, so the write itself
	// cannot flip a terminal status even outside the lock.
	pendingOnly := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Operator: gDto.FilterOperatorEq,
				Value:    id,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    model.StatusPending,
				Table:    model.TableName,
			},
		},
	}

	var messages []events.DeliveryMessage

	err = s.transactor.WithinTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, updatedFields, pendingOnly); err != nil {
			log.Error().Err(err).Msg("failed to update booking")

			return fmt.Errorf("failed to update booking: %w", err)
		}

		messages, err = s.notification.Dispatch(ctx, tx, event)

		return err
	})
	if err != nil {
		return res, err
	}

	s.afterCommit(ctx, messages, booking.ID)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.New(http.StatusNotFound, failure.KindBookingNotFound, "booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// occupiedIntervals loads the windows already held on a court for one date,
// restricted to the given statuses. excludeID skips the booking being
// decided so it does not conflict with itself.
func (s *serviceImpl) occupiedIntervals(ctx context.Context, courtID string, date time.Time, statuses []string, excludeID string) ([]schedule.Interval, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCourtID,
				Operator: gDto.FilterOperatorEq,
				Value:    courtID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldBookingDate,
				Operator: gDto.FilterOperatorEq,
				Value:    date,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    statuses,
				Table:    model.TableName,
			},
		},
	}

	if excludeID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    excludeID,
			Table:    model.TableName,
		})
	}

	params := gDto.QueryParams{
		Page:    1,
		Limit:   maxDayBookings,
		SortBy:  model.FieldStartTime,
		SortDir: gDto.SortDirAsc,
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load court schedule")

		return nil, fmt.Errorf("failed to load court schedule: %w", err)
	}

	intervals := make([]schedule.Interval, len(bookings))
	for i, b := range bookings {
		intervals[i] = schedule.Interval{Start: b.StartTime, End: b.EndTime}
	}

	return intervals, nil
}

func (s *serviceImpl) buildEvent(eventType string, booking model.Booking, court courtModel.Court, requesterName, actorID string) events.BookingEvent {
	return events.BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		CourtID:       court.ID,
		CourtName:     court.Name,
		BookingDate:   booking.BookingDate.Format(constant.DateOnlyFormat),
		StartTime:     booking.StartTime.Format(constant.TimeOnlyFormat),
		EndTime:       booking.EndTime.Format(constant.TimeOnlyFormat),
		RequesterID:   booking.UserID,
		RequesterName: requesterName,
		ActorID:       actorID,
	}
}

// afterCommit runs the post transaction side effects. Delivery and cache
// invalidation are both fire and forget.
func (s *serviceImpl) afterCommit(ctx context.Context, messages []events.DeliveryMessage, bookingID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		s.notification.Deliver(c, messages)
	}()

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, bookingID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}
