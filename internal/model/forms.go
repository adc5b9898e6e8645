package model

import (
	"fmt"
	"strings"
	"time"
)

// CreateConferenceRequest is the payload for creating a conference.
type CreateConferenceRequest struct {
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Topics       []string `json:"topics"`
	StartDate    string   `json:"start_date"` // YYYY-MM-DD, optional
	EndDate      string   `json:"end_date"`   // YYYY-MM-DD, optional
	MaxAttendees int      `json:"max_attendees"`
}

// UpdateConferenceRequest carries a partial conference update. Empty
// fields are left untouched.
type UpdateConferenceRequest struct {
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Topics       []string `json:"topics"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	MaxAttendees int      `json:"max_attendees"`
}

// Filter is one wire-level query condition on conferences.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// QueryConferencesRequest is the payload for the dynamic conference query.
type QueryConferencesRequest struct {
	Filters []Filter `json:"filters"`
}

// CreateSessionRequest is the payload for creating a session under a
// conference.
type CreateSessionRequest struct {
	Name          string `json:"name"`
	Speaker       string `json:"speaker"`
	TypeOfSession string `json:"type_of_session"`
	StartTime     int    `json:"start_time"` // hour of day, 0-23
}

// SaveProfileRequest carries the user-modifiable profile fields.
type SaveProfileRequest struct {
	DisplayName  string `json:"display_name"`
	TeeShirtSize string `json:"tee_shirt_size"`
}

// AddWishlistRequest is the payload for adding a session to a wishlist.
type AddWishlistRequest struct {
	SessionKey string `json:"session_key"`
}

// ConferenceResponse is the wire representation of a conference.
type ConferenceResponse struct {
	WebsafeKey           string   `json:"websafe_key"`
	Name                 string   `json:"name"`
	City                 string   `json:"city"`
	Topics               []string `json:"topics"`
	StartDate            string   `json:"start_date,omitempty"`
	EndDate              string   `json:"end_date,omitempty"`
	Month                int      `json:"month"`
	MaxAttendees         int      `json:"max_attendees"`
	SeatsAvailable       int      `json:"seats_available"`
	OrganizerUserID      string   `json:"organizer_user_id"`
	OrganizerDisplayName string   `json:"organizer_display_name,omitempty"`
}

// NewConferenceResponse converts a conference entity to its wire form.
func NewConferenceResponse(c *Conference, organizerDisplayName string) ConferenceResponse {
	resp := ConferenceResponse{
		WebsafeKey:           c.ID,
		Name:                 c.Name,
		City:                 c.City,
		Topics:               c.Topics,
		Month:                c.Month,
		MaxAttendees:         c.MaxAttendees,
		SeatsAvailable:       c.SeatsAvailable,
		OrganizerUserID:      c.OrganizerUserID,
		OrganizerDisplayName: organizerDisplayName,
	}
	if c.StartDate != nil {
		resp.StartDate = c.StartDate.Format(DateLayout)
	}
	if c.EndDate != nil {
		resp.EndDate = c.EndDate.Format(DateLayout)
	}
	return resp
}

// SessionResponse is the wire representation of a session.
type SessionResponse struct {
	WebsafeKey    string `json:"websafe_key"`
	ConferenceKey string `json:"conference_key"`
	Name          string `json:"name"`
	Speaker       string `json:"speaker"`
	TypeOfSession string `json:"type_of_session"`
	StartTime     int    `json:"start_time"`
}

// NewSessionResponse converts a session entity to its wire form.
func NewSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		WebsafeKey:    s.ID,
		ConferenceKey: s.ConferenceID,
		Name:          s.Name,
		Speaker:       s.Speaker,
		TypeOfSession: s.TypeOfSession,
		StartTime:     s.StartTime,
	}
}

// ProfileResponse is the wire representation of a profile.
type ProfileResponse struct {
	DisplayName            string   `json:"display_name"`
	MainEmail              string   `json:"main_email"`
	TeeShirtSize           string   `json:"tee_shirt_size"`
	ConferenceKeysToAttend []string `json:"conference_keys_to_attend"`
}

// NewProfileResponse converts a profile entity to its wire form.
func NewProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		DisplayName:            p.DisplayName,
		MainEmail:              p.MainEmail,
		TeeShirtSize:           string(p.TeeShirtSize),
		ConferenceKeysToAttend: p.ConferenceKeysToAttend,
	}
}

// BooleanResponse wraps a single boolean result.
type BooleanResponse struct {
	Data bool `json:"data"`
}

// StringResponse wraps a single string result.
type StringResponse struct {
	Data string `json:"data"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewConference builds a conference entity from a creation request,
// applying defaults for unset optional fields. Seats start equal to the
// attendee capacity; month derives from the start date.
func NewConference(id, organizerUserID string, req CreateConferenceRequest, now time.Time) (*Conference, error) {
	c := &Conference{
		ID:              id,
		OrganizerUserID: organizerUserID,
		Name:            strings.TrimSpace(req.Name),
		City:            strings.TrimSpace(req.City),
		Topics:          req.Topics,
		MaxAttendees:    req.MaxAttendees,
		CreatedAt:       now,
	}
	if c.City == "" {
		c.City = ConferenceDefaults.City
	}
	if len(c.Topics) == 0 {
		c.Topics = append([]string(nil), ConferenceDefaults.Topics...)
	}
	if c.MaxAttendees > 0 {
		c.SeatsAvailable = c.MaxAttendees
	}

	var err error
	if c.StartDate, err = ParseDate(req.StartDate); err != nil {
		return nil, err
	}
	if c.EndDate, err = ParseDate(req.EndDate); err != nil {
		return nil, err
	}
	if c.StartDate != nil {
		c.Month = int(c.StartDate.Month())
	}
	return c, nil
}

// NewSession builds a session entity from a creation request, applying
// defaults for unset optional fields.
func NewSession(id, conferenceID, organizerUserID string, req CreateSessionRequest, now time.Time) (*Session, error) {
	if req.StartTime < 0 || req.StartTime > 23 {
		return nil, fmt.Errorf("start_time must be an hour between 0 and 23")
	}
	return &Session{
		ID:              id,
		ConferenceID:    conferenceID,
		OrganizerUserID: organizerUserID,
		Name:            strings.TrimSpace(req.Name),
		Speaker:         strings.TrimSpace(req.Speaker),
		TypeOfSession:   strings.TrimSpace(req.TypeOfSession),
		StartTime:       req.StartTime,
		CreatedAt:       now,
	}, nil
}

// ParseDate parses a YYYY-MM-DD wire date, tolerating a trailing time
// component. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("date must be formatted YYYY-MM-DD: %q", s)
	}
	return &d, nil
}
