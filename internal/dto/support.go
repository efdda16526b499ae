package dto

type SupportSessionResponse struct {
	SessionID     string `json:"sessionId"`
	UserID        string `json:"userId"`
	UserName      string `json:"userName"`
	AdminID       string `json:"adminId,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	LastMessageAt string `json:"lastMessageAt"`
	UnreadByUser  int    `json:"unreadByUser"`
	UnreadByAdmin int    `json:"unreadByAdmin"`
}

// ActiveSessionResponse carries a nil session when the caller has none open.
type ActiveSessionResponse struct {
	Session *SupportSessionResponse `json:"session"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SupportMessageResponse struct {
	MessageID  string `json:"messageId"`
	SessionID  string `json:"sessionId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
	IsAdmin    bool   `json:"isAdmin"`
}
