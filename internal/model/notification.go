package model

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

type NotificationItem struct {
	NotificationID string           `dynamodbav:"notificationId"`
	UserID         string           `dynamodbav:"userId"`
	Title          string           `dynamodbav:"title"`
	Message        string           `dynamodbav:"message"`
	Type           NotificationType `dynamodbav:"type"`
	IsRead         bool             `dynamodbav:"isRead"`
	CreatedAt      string           `dynamodbav:"createdAt"`
}

type AnnouncementItem struct {
	AnnouncementID string `dynamodbav:"announcementId"`
	Title          string `dynamodbav:"title"`
	Message        string `dynamodbav:"message"`
	CreatedAt      string `dynamodbav:"createdAt"`
	CreatedBy      string `dynamodbav:"createdBy"`
}

type AnnouncementReadItem struct {
	ReadID         string `dynamodbav:"readId"`
	UserID         string `dynamodbav:"userId"`
	AnnouncementID string `dynamodbav:"announcementId"`
	ReadAt         string `dynamodbav:"readAt"`
}
