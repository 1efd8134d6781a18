package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/tripnest/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_name", "day_number", "date", "day_title",
	"category", "activity", "location", "start_time", "end_time", "cost",
}

// ExportRow is the JSON shape of one export row.
type ExportRow struct {
	TripName     string   `json:"trip_name"`
	DayNumber    int      `json:"day_number"`
	Date         string   `json:"date"`
	DayTitle     *string  `json:"day_title,omitempty"`
	Category     *string  `json:"category,omitempty"`
	ActivityName *string  `json:"activity,omitempty"`
	Location     *string  `json:"location,omitempty"`
	StartTime    *string  `json:"start_time,omitempty"`
	EndTime      *string  `json:"end_time,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
}

// ExportTrip handles GET /trips/{tripId}/export.
// It returns the itinerary as a flat table, one row per activity, as JSON
// or with ?format=csv as a CSV download.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	uid, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	var format *string
	if !queryParam(w, r, "format", &format) {
		return
	}
	switch deref(format) {
	case "", "json", "csv":
	default:
		writeError(w, http.StatusUnprocessableEntity, "validation_error", fmt.Sprintf("unknown format %q", *format))
		return
	}

	trip, rows, err := s.Export.Export(r.Context(), uid, tripID)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}

	if deref(format) == "csv" {
		writeCSV(w, exportFilename(trip.Name), rows)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, domainRowToResponse))
}

// writeCSV encodes rows as an attachment.
func writeCSV(w http.ResponseWriter, filename string, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer writes do not fail.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// exportFilename turns a trip name into a safe download name,
// e.g. "Lisbon & Sintra!" → "lisbon-sintra.csv".
func exportFilename(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "trip"
	}
	return slug + ".csv"
}

func domainRowToResponse(r domain.ExportRow) ExportRow {
	return ExportRow{
		TripName:     r.TripName,
		DayNumber:    r.DayNumber,
		Date:         r.Date,
		DayTitle:     optional(r.DayTitle),
		Category:     optional(r.Category),
		ActivityName: optional(r.ActivityName),
		Location:     optional(r.Location),
		StartTime:    optional(r.StartTime),
		EndTime:      optional(r.EndTime),
		Cost:         r.Cost,
	}
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// A nil cost is encoded as an empty string.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	cost := ""
	if r.Cost != nil {
		cost = strconv.FormatFloat(*r.Cost, 'f', 2, 64)
	}
	return []string{
		r.TripName,
		strconv.Itoa(r.DayNumber),
		r.Date,
		r.DayTitle,
		r.Category,
		r.ActivityName,
		r.Location,
		r.StartTime,
		r.EndTime,
		cost,
	}
}
