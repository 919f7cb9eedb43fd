package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"rally/config"
	"rally/infras/kafka"
	"rally/infras/otel"
	"rally/internal/domains/notification/model"
	"rally/internal/domains/notification/model/dto"
	"rally/internal/domains/notification/repository"
	userModel "rally/internal/domains/user/model"
	userRepo "rally/internal/domains/user/repository"
	"rally/internal/events"
	"rally/shared"
	"rally/shared/constant"
	gDto "rally/shared/dto"
	"rally/shared/failure"
	gModel "rally/shared/model"
	"rally/shared/timezone"
)

// Fanout recipient listing is bounded; a deployment has a handful of admins.
const maxFanoutRecipients = 500

type Notification interface {
	Dispatch(ctx context.Context, tx *sqlx.Tx, event events.BookingEvent) ([]events.DeliveryMessage, error)
	Deliver(ctx context.Context, messages []events.DeliveryMessage)
	GetAll(ctx context.Context, userID string, req gDto.QueryParams, unreadOnly bool) (dto.GetNotificationsResponse, error)
	CountUnread(ctx context.Context, userID string) (dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type serviceImpl struct {
	repo     repository.Notification
	userRepo userRepo.User
	cfg      *config.Config
	otel     otel.Otel
	kafka    kafka.Client
}

func New(repo repository.Notification, userRepo userRepo.User, cfg *config.Config, otel otel.Otel, kafka kafka.Client) Notification {
	return &serviceImpl{
		repo:     repo,
		userRepo: userRepo,
		cfg:      cfg,
		otel:     otel,
		kafka:    kafka,
	}
}

// Dispatch expands a booking event into per recipient notification rows and
// inserts them within the caller's transaction, so the booking and its
// notifications commit or roll back together. The returned delivery messages
// must only be handed to Deliver after the transaction commits.
func (s *serviceImpl) Dispatch(ctx context.Context, tx *sqlx.Tx, event events.BookingEvent) (messages []events.DeliveryMessage, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Dispatch")
	defer scope.End()
	defer scope.TraceIfError(err)

	recipients, err := s.recipients(ctx, event)
	if err != nil {
		return nil, err
	}

	if len(recipients) == 0 {
		log.Warn().Str("eventType", event.Type).Str("bookingID", event.BookingID).Msg("no recipients for booking event")

		return nil, nil
	}

	subject, body := renderMessage(event)

	notifications := make([]model.Notification, len(recipients))
	messages = make([]events.DeliveryMessage, len(recipients))

	for i, recipient := range recipients {
		notifications[i] = model.Notification{
			ID:        uuid.NewString(),
			UserID:    recipient.UserID,
			BookingID: event.BookingID,
			EventType: event.Type,
			Title:     subject,
			Message:   body,
			IsRead:    false,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  event.ActorID,
				ModifiedBy: event.ActorID,
			},
		}

		messages[i] = events.DeliveryMessage{
			NotificationID: notifications[i].ID,
			To:             recipient.Email,
			ToName:         recipient.Name,
			Subject:        subject,
			Body:           body,
		}
	}

	if err = s.repo.InsertBulkTx(ctx, tx, notifications); err != nil {
		log.Error().Err(err).Str("bookingID", event.BookingID).Msg("failed to insert notifications")

		return nil, fmt.Errorf("failed to insert notifications: %w", err)
	}

	return messages, nil
}

// Deliver publishes rendered messages for best effort delivery. Failures are
// logged and swallowed; the persisted notification rows are the source of
// truth and delivery never affects the booking outcome.
func (s *serviceImpl) Deliver(ctx context.Context, messages []events.DeliveryMessage) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Deliver")
	defer scope.End()

	if len(messages) == 0 {
		return
	}

	kafkaMessages := make([]kafka.Message, len(messages))
	for i, message := range messages {
		kafkaMessages[i] = kafka.Message{
			Key:   message.NotificationID,
			Value: message,
		}
	}

	if err := s.kafka.SendMessages(ctx, events.TopicNotificationDelivery, kafkaMessages...); err != nil {
		log.Error().Err(err).Int("count", len(messages)).Msg("failed to publish delivery messages")
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, userID string, req gDto.QueryParams, unreadOnly bool) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := s.ownerFilter(userID)
	if unreadOnly {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldIsRead,
			Operator: gDto.FilterOperatorEq,
			Value:    false,
			Table:    model.TableName,
		})
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count notifications")

		return res, fmt.Errorf("failed to count notifications: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get notifications")

		return res, fmt.Errorf("failed to get notifications: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) CountUnread(ctx context.Context, userID string) (res dto.UnreadCountResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CountUnread")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := s.ownerFilter(userID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldIsRead,
		Operator: gDto.FilterOperatorEq,
		Value:    false,
		Table:    model.TableName,
	})

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count unread notifications")

		return res, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	res.UnreadCount = count

	return res, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, id, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkRead")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := s.ownerFilter(userID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldID,
		Operator: gDto.FilterOperatorEq,
		Value:    id,
		Table:    model.TableName,
	})

	notification, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get notification")

		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.ID == constant.Empty {
		return failure.NotFound("notification not found") // nolint:wrapcheck
	}

	if notification.IsRead {
		return nil
	}

	return s.markRead(ctx, filter, userID)
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAllRead")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := s.ownerFilter(userID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldIsRead,
		Operator: gDto.FilterOperatorEq,
		Value:    false,
		Table:    model.TableName,
	})

	return s.markRead(ctx, filter, userID)
}

func (s *serviceImpl) markRead(ctx context.Context, filter gDto.FilterGroup, userID string) error {
	updatedFields := map[string]any{
		model.FieldIsRead:        true,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: userID,
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to mark notifications as read")

		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	return nil
}

func (s *serviceImpl) ownerFilter(userID string) gDto.FilterGroup {
	return shared.FilterByID(userID, model.FieldUserID, model.TableName)
}

// recipients resolves who must be notified for an event. Booking requests go
// to every active admin, decisions go back to the requester.
func (s *serviceImpl) recipients(ctx context.Context, event events.BookingEvent) ([]events.Recipient, error) {
	if event.Type == events.TypeBookingRequested {
		return s.adminRecipients(ctx)
	}

	filter := shared.FilterByID(event.RequesterID, userModel.FieldID, userModel.TableName)

	requester, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking requester")

		return nil, fmt.Errorf("failed to get booking requester: %w", err)
	}

	if requester.ID == constant.Empty {
		return nil, nil
	}

	return []events.Recipient{{
		UserID: requester.ID,
		Name:   requester.FullName,
		Email:  requester.Email,
	}}, nil
}

func (s *serviceImpl) adminRecipients(ctx context.Context) ([]events.Recipient, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    userModel.FieldRole,
				Operator: gDto.FilterOperatorEq,
				Value:    constant.RoleAdmin,
				Table:    userModel.TableName,
			},
			gDto.Filter{
				Field:    userModel.FieldActive,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
				Table:    userModel.TableName,
			},
		},
	}

	params := gDto.QueryParams{
		Page:    1,
		Limit:   maxFanoutRecipients,
		SortBy:  constant.FieldCreatedAt,
		SortDir: gDto.SortDirAsc,
	}

	admins, err := s.userRepo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list admin recipients")

		return nil, fmt.Errorf("failed to list admin recipients: %w", err)
	}

	recipients := make([]events.Recipient, len(admins))
	for i, admin := range admins {
		recipients[i] = events.Recipient{
			UserID: admin.ID,
			Name:   admin.FullName,
			Email:  admin.Email,
		}
	}

	return recipients, nil
}

func renderMessage(event events.BookingEvent) (subject, body string) {
	window := fmt.Sprintf("%s on %s from %s to %s", event.CourtName, event.BookingDate, event.StartTime, event.EndTime)

	switch event.Type {
	case events.TypeBookingApproved:
		return "Booking approved", fmt.Sprintf("Your booking for %s has been approved.", window)
	case events.TypeBookingRejected:
		return "Booking rejected", fmt.Sprintf("Your booking for %s has been rejected.", window)
	default:
		return "New booking request", fmt.Sprintf("%s requested %s.", event.RequesterName, window)
	}
}
