package dto

import (
	"testing"

	"flex-design-backend/internal/config"
)

func TestNewStatsResponseOffsetsDisplayOnly(t *testing.T) {
	actual := DashboardStats{
		Users:            3,
		Requests:         2,
		RequestsByStatus: map[string]int{"PENDING": 2},
		ContactMessages:  1,
		Visitors:         10,
	}

	resp := NewStatsResponse(actual, config.StatsDisplay{Users: 100, Requests: 50, Messages: 20, Visitors: 1000})

	if resp.Display.Users != 103 || resp.Display.Requests != 52 || resp.Display.ContactMessages != 21 || resp.Display.Visitors != 1010 {
		t.Fatalf("unexpected display stats %+v", resp.Display)
	}
	if resp.Actual.Users != 3 || resp.Actual.Visitors != 10 {
		t.Fatalf("actual stats changed: %+v", resp.Actual)
	}

	resp.Display.RequestsByStatus["PENDING"] = 99
	if actual.RequestsByStatus["PENDING"] != 2 {
		t.Fatal("display map aliases the actual map")
	}
}
