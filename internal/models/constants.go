package models

const (
	// DefaultRequestPageSize is used when /requests/all omits size.
	DefaultRequestPageSize = 10

	// MaxRequestPageSize caps a single page of item requests.
	MaxRequestPageSize = 100

	// ExportSheetName names the worksheet of booking exports.
	ExportSheetName = "Bookings"
)
