package dto

type NotificationResponse struct {
	NotificationID string `json:"notificationId"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Type           string `json:"type"`
	IsRead         bool   `json:"isRead"`
	CreatedAt      string `json:"createdAt"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

type CreateAnnouncementRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type AnnouncementResponse struct {
	AnnouncementID string `json:"announcementId"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	CreatedAt      string `json:"createdAt"`
	CreatedBy      string `json:"createdBy"`
	IsRead         bool   `json:"isRead"`
}

type AnnouncementFeedResponse struct {
	Announcements []AnnouncementResponse `json:"announcements"`
	Unread        int                    `json:"unread"`
}
