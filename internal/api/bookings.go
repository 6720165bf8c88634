package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createBookingRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	start, err := parseTimestamp("start", body.Start)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	end, err := parseTimestamp("end", body.End)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	booking, err := s.deps.Bookings.CreateBooking(r.Context(), models.NewBooking{
		ItemID:   body.ItemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("approved")))
	if err != nil {
		s.fail(w, r, domain.BadRequest("approved must be true or false"))
		return
	}

	booking, err := s.deps.Bookings.DecideBooking(r.Context(), ownerID, bookingID, approved)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	booking, err := s.deps.Bookings.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	bookerID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookings, err := s.deps.Bookings.ListBookerBookings(r.Context(), bookerID, r.URL.Query().Get("state"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	bookings, ok := s.ownerBookings(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// handleExportOwnerBookings serves the owner listing as an XLSX workbook.
func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Exporter == nil {
		writeError(w, http.StatusNotFound, "export is not enabled")
		return
	}
	bookings, ok := s.ownerBookings(w, r)
	if !ok {
		return
	}

	data, err := s.deps.Exporter.WriteBookings(bookings)
	if err != nil {
		s.fail(w, r, fmt.Errorf("failed to export bookings: %w", err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) ownerBookings(w http.ResponseWriter, r *http.Request) ([]*models.Booking, bool) {
	ownerID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	bookings, err := s.deps.Bookings.ListOwnerBookings(r.Context(), ownerID, r.URL.Query().Get("state"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return bookings, true
}
