package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/civigo/grievance-backend/internal/auth"
	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/services"
)

// Handler holds the services the HTTP layer dispatches into.
type Handler struct {
	users      *services.UserService
	grievances *services.GrievanceService
}

func NewHandler(users *services.UserService, grievances *services.GrievanceService) *Handler {
	return &Handler{users: users, grievances: grievances}
}

func callerFrom(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Authorization required"})
		return auth.Identity{}, false
	}
	return identity, true
}

// SubmitGrievance handles POST /addinfo. Ownership fields in the body
// are ignored; the authenticated caller becomes the owner.
func (h *Handler) SubmitGrievance(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req services.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	g, err := h.grievances.Submit(r.Context(), req, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, g)
}

// AddChatRequest is the POST /addchat payload.
type AddChatRequest struct {
	ID   string           `json:"id"`
	Chat models.ChatEntry `json:"chat"`
}

// AddChat handles POST /addchat.
func (h *Handler) AddChat(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req AddChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.ID == "" {
		writeBadRequest(w, "Grievance id is required")
		return
	}

	g, err := h.grievances.AppendChat(r.Context(), req.ID, req.Chat, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// UpdateStatusRequest is the PATCH /updatestatus payload.
type UpdateStatusRequest struct {
	ID string `json:"id"`
}

// UpdateStatus handles PATCH /updatestatus.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.ID == "" {
		writeBadRequest(w, "Grievance id is required")
		return
	}

	g, err := h.grievances.Resolve(r.Context(), req.ID, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// UserGrievances handles GET /user-grievances.
func (h *Handler) UserGrievances(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	list, err := h.grievances.ListForUser(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// AllGrievances handles GET /all-grievances.
func (h *Handler) AllGrievances(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerFrom(w, r); !ok {
		return
	}

	list, err := h.grievances.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}
