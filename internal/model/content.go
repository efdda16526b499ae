package model

type ProjectType string

const (
	ProjectVoiceAgencies ProjectType = "VOICE_AGENCIES"
	ProjectLogo          ProjectType = "LOGO"
	ProjectBranding      ProjectType = "BRANDING"
	ProjectWebDesign     ProjectType = "WEB_DESIGN"
	ProjectSocialMedia   ProjectType = "SOCIAL_MEDIA"
	ProjectVideoEditing  ProjectType = "VIDEO_EDITING"
	ProjectOther         ProjectType = "OTHER"
)

var ProjectTypes = []ProjectType{
	ProjectVoiceAgencies,
	ProjectLogo,
	ProjectBranding,
	ProjectWebDesign,
	ProjectSocialMedia,
	ProjectVideoEditing,
	ProjectOther,
}

func (p ProjectType) Valid() bool {
	for _, t := range ProjectTypes {
		if t == p {
			return true
		}
	}
	return false
}

type RequestStatus string

const (
	RequestPending    RequestStatus = "PENDING"
	RequestInProgress RequestStatus = "IN_PROGRESS"
	RequestCompleted  RequestStatus = "COMPLETED"
	RequestRejected   RequestStatus = "REJECTED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestInProgress, RequestCompleted, RequestRejected:
		return true
	}
	return false
}

type DesignRequestItem struct {
	RequestID   string        `dynamodbav:"requestId"`
	UserID      string        `dynamodbav:"userId,omitempty"`
	ClientName  string        `dynamodbav:"clientName"`
	Email       string        `dynamodbav:"email"`
	ProjectType ProjectType   `dynamodbav:"projectType"`
	Description string        `dynamodbav:"description"`
	Budget      string        `dynamodbav:"budget,omitempty"`
	Status      RequestStatus `dynamodbav:"status"`
	CreatedAt   string        `dynamodbav:"createdAt"`
}

type ContactMessageItem struct {
	MessageID string `dynamodbav:"messageId"`
	Name      string `dynamodbav:"name"`
	Phone     string `dynamodbav:"phone"`
	Text      string `dynamodbav:"text"`
	Date      string `dynamodbav:"date"`
	Read      bool   `dynamodbav:"read"`
}

type BannerItem struct {
	BannerID  string `dynamodbav:"bannerId"`
	ImageURL  string `dynamodbav:"imageUrl"`
	Title     string `dynamodbav:"title"`
	IsActive  bool   `dynamodbav:"isActive"`
	CreatedAt string `dynamodbav:"createdAt"`
}

type VisitorItem struct {
	DeviceID     string `dynamodbav:"deviceId"`
	UserAgent    string `dynamodbav:"userAgent"`
	UserID       string `dynamodbav:"userId,omitempty"`
	FirstVisit   string `dynamodbav:"firstVisit"`
	LastVisit    string `dynamodbav:"lastVisit"`
	VisitCount   int    `dynamodbav:"visitCount"`
	IsRegistered bool   `dynamodbav:"isRegistered"`
}
