package config

// BookingConfig tunes the reservation engine and the seed command.
// MaxDurationHours bounds a single booking (the booking form offers 1 to
// 4 hours).  ReportIncludeCancelled makes the daily report count
// cancelled reservations too; by default only reservations still holding
// their slot are counted.  SeedReservations and SeedDaysBack size the
// demo data written by `manage seed`.
type BookingConfig struct {
	MaxDurationHours       int
	ReportIncludeCancelled bool
	SeedReservations       int
	SeedDaysBack           int
}

// LoadBookingConfig reads BOOKING_* and REPORT_* variables.
func LoadBookingConfig() BookingConfig {
	cfg := BookingConfig{
		MaxDurationHours:       envInt("BOOKING_MAX_DURATION_HOURS", 4),
		ReportIncludeCancelled: envBool("REPORT_INCLUDE_CANCELLED", false),
		SeedReservations:       envInt("SEED_RESERVATIONS", 200),
		SeedDaysBack:           envInt("SEED_DAYS_BACK", 14),
	}
	if cfg.MaxDurationHours < 1 {
		cfg.MaxDurationHours = 1
	}
	if cfg.SeedDaysBack < 1 {
		cfg.SeedDaysBack = 1
	}
	return cfg
}
