package model

import (
	"fmt"
	"time"
)

const (
	UsersTable             = "Users"
	UserEmailsTable        = "UserEmails"
	DesignRequestsTable    = "DesignRequests"
	ContactMessagesTable   = "ContactMessages"
	BannersTable           = "Banners"
	NotificationsTable     = "Notifications"
	AnnouncementsTable     = "Announcements"
	AnnouncementReadsTable = "AnnouncementReads"
	SupportSessionsTable   = "SupportSessions"
	SupportMessagesTable   = "SupportMessages"
	VisitorsTable          = "Visitors"
)

const (
	IndexByEmail   = "byEmail"
	IndexByUser    = "byUser"
	IndexBySession = "bySession"
)

// TimeLayout is a fixed width UTC layout, so string order equals time order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, ts)
	if err == nil {
		return t
	}
	t, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}

func SupportMessagePK(sessionID, messageID string) string {
	return fmt.Sprintf("%s#%s", sessionID, messageID)
}

func AnnouncementReadID(userID, announcementID string) string {
	return fmt.Sprintf("%s_%s", userID, announcementID)
}
