package dto

import "flex-design-backend/internal/config"

type DashboardStats struct {
	Users               int            `json:"users"`
	Requests            int            `json:"requests"`
	RequestsByStatus    map[string]int `json:"requestsByStatus"`
	ContactMessages     int            `json:"contactMessages"`
	UnreadMessages      int            `json:"unreadMessages"`
	ActiveBanners       int            `json:"activeBanners"`
	OpenSupportSessions int            `json:"openSupportSessions"`
	Visitors            int            `json:"visitors"`
}

// StatsResponse returns the stored counts next to the numbers the dashboard
// shows.
type StatsResponse struct {
	Display DashboardStats `json:"display"`
	Actual  DashboardStats `json:"actual"`
}

// NewStatsResponse applies the configured display offsets. Stored data is
// never inflated; only the rendered headline numbers are.
func NewStatsResponse(actual DashboardStats, offsets config.StatsDisplay) StatsResponse {
	display := actual
	display.RequestsByStatus = make(map[string]int, len(actual.RequestsByStatus))
	for k, v := range actual.RequestsByStatus {
		display.RequestsByStatus[k] = v
	}
	display.Users += offsets.Users
	display.Requests += offsets.Requests
	display.ContactMessages += offsets.Messages
	display.Visitors += offsets.Visitors
	return StatsResponse{Display: display, Actual: actual}
}

type WipeRequest struct {
	Confirm      string `json:"confirm"`
	ConfirmAgain string `json:"confirmAgain"`
}

type WipeTableResult struct {
	Table   string `json:"table"`
	Deleted int    `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

type WipeResponse struct {
	Deleted int               `json:"deleted"`
	Tables  []WipeTableResult `json:"tables"`
}
