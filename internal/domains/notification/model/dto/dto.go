package dto

import (
	"rally/internal/domains/notification/model"
	"rally/shared"
	gDto "rally/shared/dto"
)

type NotificationResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	EventType string `json:"event_type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	gDto.Metadata
}

func (r *NotificationResponse) FromModel(model model.Notification) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.EventType = model.EventType
	r.Title = model.Title
	r.Message = model.Message
	r.IsRead = model.IsRead
	r.Metadata.FromModel(model.Metadata)
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetNotificationsResponse) FromModels(models []model.Notification, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Notifications = make([]NotificationResponse, len(models))
	for i, mod := range models {
		r.Notifications[i].FromModel(mod)
	}
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
