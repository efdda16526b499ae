package model

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	UserStatusBanned UserStatus = "BANNED"
)

type UserItem struct {
	UserID       string     `dynamodbav:"userId"`
	Name         string     `dynamodbav:"name"`
	Email        string     `dynamodbav:"email"`
	PasswordHash string     `dynamodbav:"passwordHash"`
	Avatar       string     `dynamodbav:"avatar,omitempty"`
	Role         UserRole   `dynamodbav:"role"`
	Status       UserStatus `dynamodbav:"status"`
	Language     string     `dynamodbav:"language,omitempty"`
	Theme        string     `dynamodbav:"theme,omitempty"`
	JoinedAt     string     `dynamodbav:"joinedAt"`
}

func (u UserItem) IsBanned() bool {
	return u.Status == UserStatusBanned
}

// UserEmailItem reserves an address for one account. Its key makes email
// uniqueness a write condition instead of a read-then-write check.
type UserEmailItem struct {
	Email  string `dynamodbav:"email"`
	UserID string `dynamodbav:"userId"`
}
