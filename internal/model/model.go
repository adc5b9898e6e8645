// Package model defines the core domain types for the conference
// management system.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for conference dates.
const DateLayout = "2006-01-02"

// ConferenceDefaults are substituted for unset optional fields at
// conference creation time.
var ConferenceDefaults = struct {
	City   string
	Topics []string
}{
	City:   "Default City",
	Topics: []string{"Default", "Topic"},
}

// Conference represents a published conference owned by an organizer.
type Conference struct {
	ID              string
	OrganizerUserID string
	Name            string
	City            string
	Topics          []string
	StartDate       *time.Time
	EndDate         *time.Time
	Month           int // 1-12 derived from StartDate, 0 when unset
	MaxAttendees    int
	SeatsAvailable  int
	CreatedAt       time.Time
}

// Clone returns a deep copy of the conference.
func (c *Conference) Clone() *Conference {
	cp := *c
	cp.Topics = append([]string(nil), c.Topics...)
	if c.StartDate != nil {
		d := *c.StartDate
		cp.StartDate = &d
	}
	if c.EndDate != nil {
		d := *c.EndDate
		cp.EndDate = &d
	}
	return &cp
}

// Session represents a single talk, workshop or keynote within a
// conference. Speaker is free text, not a reference to a profile.
type Session struct {
	ID              string
	ConferenceID    string
	OrganizerUserID string
	Name            string
	Speaker         string
	TypeOfSession   string
	StartTime       int // hour of day, 0-23
	CreatedAt       time.Time
}

// Clone returns a copy of the session.
func (s *Session) Clone() *Session {
	cp := *s
	return &cp
}

// Profile holds per-user state, created lazily on first access.
type Profile struct {
	UserID                 string
	DisplayName            string
	MainEmail              string
	TeeShirtSize           TeeShirtSize
	ConferenceKeysToAttend []string
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.ConferenceKeysToAttend = append([]string(nil), p.ConferenceKeysToAttend...)
	return &cp
}

// Attending reports whether the profile already lists the conference key.
func (p *Profile) Attending(conferenceKey string) bool {
	for _, k := range p.ConferenceKeysToAttend {
		if k == conferenceKey {
			return true
		}
	}
	return false
}

// RemoveConferenceKey drops the conference key from the attendance list,
// reporting whether it was present.
func (p *Profile) RemoveConferenceKey(conferenceKey string) bool {
	for i, k := range p.ConferenceKeysToAttend {
		if k == conferenceKey {
			p.ConferenceKeysToAttend = append(
				p.ConferenceKeysToAttend[:i], p.ConferenceKeysToAttend[i+1:]...)
			return true
		}
	}
	return false
}

// WishlistEntry marks a session a user wants to attend. No uniqueness is
// enforced on (session, user) pairs.
type WishlistEntry struct {
	ID        string
	SessionID string
	UserID    string
	CreatedAt time.Time
}

// TeeShirtSize is the closed set of tee shirt size categories.
type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXSM          TeeShirtSize = "XS_M"
	TeeShirtXSW          TeeShirtSize = "XS_W"
	TeeShirtSM           TeeShirtSize = "S_M"
	TeeShirtSW           TeeShirtSize = "S_W"
	TeeShirtMM           TeeShirtSize = "M_M"
	TeeShirtMW           TeeShirtSize = "M_W"
	TeeShirtLM           TeeShirtSize = "L_M"
	TeeShirtLW           TeeShirtSize = "L_W"
	TeeShirtXLM          TeeShirtSize = "XL_M"
	TeeShirtXLW          TeeShirtSize = "XL_W"
	TeeShirtXXLM         TeeShirtSize = "XXL_M"
	TeeShirtXXLW         TeeShirtSize = "XXL_W"
	TeeShirtXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtXXXLW        TeeShirtSize = "XXXL_W"
)

var teeShirtSizes = map[TeeShirtSize]bool{
	TeeShirtNotSpecified: true,
	TeeShirtXSM:          true, TeeShirtXSW: true,
	TeeShirtSM: true, TeeShirtSW: true,
	TeeShirtMM: true, TeeShirtMW: true,
	TeeShirtLM: true, TeeShirtLW: true,
	TeeShirtXLM: true, TeeShirtXLW: true,
	TeeShirtXXLM: true, TeeShirtXXLW: true,
	TeeShirtXXXLM: true, TeeShirtXXXLW: true,
}

// ParseTeeShirtSize validates a wire value against the closed set.
func ParseTeeShirtSize(s string) (TeeShirtSize, error) {
	size := TeeShirtSize(strings.ToUpper(strings.TrimSpace(s)))
	if !teeShirtSizes[size] {
		return "", fmt.Errorf("unknown tee shirt size %q", s)
	}
	return size, nil
}
