package model

type SupportSessionStatus string

const (
	SupportStatusWaiting SupportSessionStatus = "WAITING"
	SupportStatusActive  SupportSessionStatus = "ACTIVE"
	SupportStatusClosed  SupportSessionStatus = "CLOSED"
)

// IsOpen reports whether the session can still be claimed or answered.
func (s SupportSessionStatus) IsOpen() bool {
	return s == SupportStatusWaiting || s == SupportStatusActive
}

type SupportSessionItem struct {
	SessionID     string               `dynamodbav:"sessionId"`
	UserID        string               `dynamodbav:"userId"`
	UserName      string               `dynamodbav:"userName"`
	AdminID       string               `dynamodbav:"adminId,omitempty"`
	Status        SupportSessionStatus `dynamodbav:"status"`
	CreatedAt     string               `dynamodbav:"createdAt"`
	LastMessageAt string               `dynamodbav:"lastMessageAt"`
	UnreadByUser  int                  `dynamodbav:"unreadByUser"`
	UnreadByAdmin int                  `dynamodbav:"unreadByAdmin"`
}

type SupportMessageItem struct {
	PK         string `dynamodbav:"pk"`
	SessionID  string `dynamodbav:"sessionId"`
	MessageID  string `dynamodbav:"messageId"`
	SenderID   string `dynamodbav:"senderId"`
	SenderName string `dynamodbav:"senderName"`
	Text       string `dynamodbav:"text"`
	Timestamp  string `dynamodbav:"timestamp"`
	IsAdmin    bool   `dynamodbav:"isAdmin"`
}
