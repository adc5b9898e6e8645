// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/confcentral/confcentral/internal/auth"
	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/query"
	"github.com/confcentral/confcentral/internal/service"
	"github.com/confcentral/confcentral/internal/store"
)

// API holds all HTTP handlers for the conference management API.
type API struct {
	conferences *service.Conferences
	registrar   *service.Registrar
	sessions    *service.Sessions
	profiles    *service.Profiles
}

// NewAPI constructs the handler set.
func NewAPI(
	conferences *service.Conferences,
	registrar *service.Registrar,
	sessions *service.Sessions,
	profiles *service.Profiles,
) *API {
	return &API{
		conferences: conferences,
		registrar:   registrar,
		sessions:    sessions,
		profiles:    profiles,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps the error taxonomy to distinct HTTP statuses so
// callers can tell "not your conference" from "no seats left" from "bad
// filter".
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrNoSeatsAvailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, query.ErrInvalidFilter),
		errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return auth.Principal{}, false
	}
	return p, true
}

// ─── Conferences ──────────────────────────────────────────────────────────────

// CreateConference handles POST /conferences
func (h *API) CreateConference(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req model.CreateConferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	conf, err := h.conferences.Create(r.Context(), p, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

// UpdateConference handles PUT /conferences/{key}
func (h *API) UpdateConference(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req model.UpdateConferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	conf, err := h.conferences.Update(r.Context(), p, chi.URLParam(r, "key"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// GetConference handles GET /conferences/{key}
func (h *API) GetConference(w http.ResponseWriter, r *http.Request) {
	conf, err := h.conferences.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// GetConferencesCreated handles GET /conferences/created
func (h *API) GetConferencesCreated(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	confs, err := h.conferences.Created(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confs)
}

// QueryConferences handles POST /conferences/query
func (h *API) QueryConferences(w http.ResponseWriter, r *http.Request) {
	var req model.QueryConferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	confs, err := h.conferences.Query(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confs)
}

// ─── Registration ─────────────────────────────────────────────────────────────

// Register handles POST /conferences/{key}/register
func (h *API) Register(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	registered, err := h.registrar.Register(r.Context(), p, chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BooleanResponse{Data: registered})
}

// Unregister handles DELETE /conferences/{key}/register
func (h *API) Unregister(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	released, err := h.registrar.Unregister(r.Context(), p, chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BooleanResponse{Data: released})
}

// GetConferencesToAttend handles GET /conferences/attending
func (h *API) GetConferencesToAttend(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	confs, err := h.registrar.Attending(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confs)
}

// ─── Sessions ─────────────────────────────────────────────────────────────────

// CreateSession handles POST /conferences/{key}/sessions
func (h *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req model.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.sessions.Create(r.Context(), p, chi.URLParam(r, "key"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// GetConferenceSessions handles GET /conferences/{key}/sessions with an
// optional ?type= exact-match restriction.
func (h *API) GetConferenceSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ByConference(r.Context(),
		chi.URLParam(r, "key"), r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetSessionsBySpeaker handles GET /sessions/speaker/{speaker}
func (h *API) GetSessionsBySpeaker(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.BySpeaker(r.Context(), chi.URLParam(r, "speaker"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetMorningSessions handles GET /sessions/morning
func (h *API) GetMorningSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.Morning(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetAfternoonSessions handles GET /sessions/afternoon
func (h *API) GetAfternoonSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.Afternoon(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetEarlyNonWorkshops handles GET /sessions/early-non-workshops
func (h *API) GetEarlyNonWorkshops(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.EarlyNonWorkshops(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

// AddToWishlist handles POST /wishlist
func (h *API) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req model.AddWishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	msg, err := h.sessions.AddToWishlist(r.Context(), p, req.SessionKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.StringResponse{Data: msg})
}

// GetWishlist handles GET /wishlist
func (h *API) GetWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sessions, err := h.sessions.Wishlist(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// DeleteFromWishlist handles DELETE /wishlist/{sessionKey}
// Removes every entry for the session across all users.
func (h *API) DeleteFromWishlist(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}
	msg, err := h.sessions.DeleteFromWishlist(r.Context(), chi.URLParam(r, "sessionKey"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StringResponse{Data: msg})
}

// ─── Derived state ────────────────────────────────────────────────────────────

// GetFeaturedSpeaker handles GET /featured-speaker
func (h *API) GetFeaturedSpeaker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.StringResponse{Data: h.sessions.FeaturedSpeaker()})
}

// GetAnnouncement handles GET /announcement
func (h *API) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.StringResponse{Data: h.conferences.Announcement()})
}

// ─── Profile ──────────────────────────────────────────────────────────────────

// GetProfile handles GET /profile
func (h *API) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	prof, err := h.profiles.Get(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// SaveProfile handles POST /profile
func (h *API) SaveProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req model.SaveProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	prof, err := h.profiles.Save(r.Context(), p, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
