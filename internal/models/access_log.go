package models

import "time"

// AccessLog is one recorded visit.
type AccessLog struct {
	ID        int64     `json:"id"`
	IP        string    `json:"ip"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessLogFilter narrows a visit log listing. Nil bounds are open.
type AccessLogFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// DailyCount is the number of visits on one calendar day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// PathCount is the number of visits to one path.
type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// AccessStats summarises the visit log for the dashboard.
type AccessStats struct {
	Today       int64        `json:"today"`
	Total       int64        `json:"total"`
	UniqueIPs   int64        `json:"uniqueIPs"`
	WeeklyStats []DailyCount `json:"weeklyStats"`
	TopPages    []PathCount  `json:"topPages"`
}
