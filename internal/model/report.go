package model

import "time"

// DailyCount is one row of the daily reservations report.
type DailyCount struct {
	Date  time.Time // UTC midnight of the day
	Count int
}

// ReportFilter restricts the daily report to reservations starting in
// [StartDate 00:00, EndDate 24:00).  Nil bounds are open.
type ReportFilter struct {
	StartDate        *time.Time
	EndDate          *time.Time
	IncludeCancelled bool
}
