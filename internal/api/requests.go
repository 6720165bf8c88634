package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createItemRequestRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	request, err := s.deps.Requests.CreateRequest(r.Context(), requesterID, body.Description)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	requesterID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	requests, err := s.deps.Requests.ListOwnRequests(r.Context(), requesterID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := s.callerID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	size, err := queryInt(r, "size", models.DefaultRequestPageSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	requests, err := s.deps.Requests.ListOtherRequests(r.Context(), userID, from, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// handleGetRequest requires a caller header like the other request routes,
// though any existing user may view any request.
func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	if _, err := s.callerID(r); err != nil {
		s.fail(w, r, err)
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	request, err := s.deps.Requests.GetRequest(r.Context(), requestID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
