package controllers

import (
	"net/http"

	"volunvibe/app/models"
	"volunvibe/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RequestController handles HTTP requests for volunteer requests
type RequestController struct {
	ledger *services.Ledger
	logger *zap.Logger
}

// NewRequestController creates a new RequestController
func NewRequestController(ledger *services.Ledger, logger *zap.Logger) *RequestController {
	return &RequestController{ledger: ledger, logger: logger}
}

// Create handles a volunteer applying to a post
func (rc *RequestController) Create(w http.ResponseWriter, r *http.Request) {
	var request models.Request
	if err := decodeJSON(w, r, &request); err != nil {
		sendError(w, r, rc.logger, err)
		return
	}

	result, err := rc.ledger.CreateRequest(r.Context(), &request)
	if err != nil {
		sendError(w, r, rc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// Index handles listing every request
func (rc *RequestController) Index(w http.ResponseWriter, r *http.Request) {
	requests, err := rc.ledger.ListRequests(r.Context())
	if err != nil {
		sendError(w, r, rc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, requests)
}

// ByVolunteer handles listing the caller's own requests
func (rc *RequestController) ByVolunteer(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		sendError(w, r, rc.logger, err)
		return
	}

	requests, err := rc.ledger.ListRequestsByVolunteer(r.Context(), caller, mux.Vars(r)["email"])
	if err != nil {
		sendError(w, r, rc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, requests)
}

// Delete handles a volunteer withdrawing a request
func (rc *RequestController) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := rc.ledger.DeleteRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, rc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}
