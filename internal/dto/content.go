package dto

type CreateRequestRequest struct {
	ClientName  string `json:"clientName"`
	Email       string `json:"email"`
	ProjectType string `json:"projectType"`
	Description string `json:"description"`
	Budget      string `json:"budget,omitempty"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status"`
}

type DesignRequestResponse struct {
	RequestID   string `json:"requestId"`
	UserID      string `json:"userId,omitempty"`
	ClientName  string `json:"clientName"`
	Email       string `json:"email"`
	ProjectType string `json:"projectType"`
	Description string `json:"description"`
	Budget      string `json:"budget,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

type ContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

type ContactMessageResponse struct {
	MessageID string `json:"messageId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Read      bool   `json:"read"`
}

type CreateBannerRequest struct {
	ImageURL string `json:"imageUrl"`
	Title    string `json:"title"`
}

type BannerResponse struct {
	BannerID  string `json:"bannerId"`
	ImageURL  string `json:"imageUrl"`
	Title     string `json:"title"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type TrackVisitRequest struct {
	DeviceID string `json:"deviceId"`
}

type VisitorResponse struct {
	DeviceID     string `json:"deviceId"`
	UserAgent    string `json:"userAgent"`
	UserID       string `json:"userId,omitempty"`
	FirstVisit   string `json:"firstVisit"`
	LastVisit    string `json:"lastVisit"`
	VisitCount   int    `json:"visitCount"`
	IsRegistered bool   `json:"isRegistered"`
}
