package domain

// ExportRow is one line of a trip's flat itinerary export: one row per
// activity with its day and trip fields repeated. A day with no activities
// yields one row with empty activity fields.
type ExportRow struct {
	TripName     string
	DayNumber    int
	Date         string // "2006-01-02"
	DayTitle     string
	Category     string
	ActivityName string
	Location     string
	StartTime    string
	EndTime      string
	Cost         *float64
}
