package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/confcentral/confcentral/internal/auth"
	"github.com/confcentral/confcentral/internal/cache"
	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/store"
)

const (
	morningCutoff   = 12
	eveningCutoff   = 19
	workshopType    = "Workshop"
	featureMinTalks = 2
)

// Sessions manages sessions under conferences, per-user wishlists, and
// the featured-speaker derivation.
type Sessions struct {
	store store.Store
	cache *cache.Cache
	tasks Dispatcher
}

// NewSessions constructs a Sessions service.
func NewSessions(st store.Store, c *cache.Cache, tasks Dispatcher) *Sessions {
	return &Sessions{store: st, cache: c, tasks: tasks}
}

// Create adds a session under a conference, recomputes the featured
// speaker, and enqueues a confirmation email. Only the conference
// organizer may add sessions.
func (s *Sessions) Create(ctx context.Context, p auth.Principal, conferenceKey string, req model.CreateSessionRequest) (model.SessionResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.SessionResponse{}, fmt.Errorf("%w: session name is required", ErrValidation)
	}

	conf, err := s.store.GetConference(ctx, conferenceKey)
	if err != nil {
		return model.SessionResponse{}, err
	}
	if conf.OrganizerUserID != p.UserID {
		return model.SessionResponse{}, ErrForbidden
	}

	sess, err := model.NewSession(uuid.NewString(), conf.ID, p.UserID, req, time.Now().UTC())
	if err != nil {
		return model.SessionResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.PutSession(ctx, sess); err != nil {
		return model.SessionResponse{}, fmt.Errorf("create session: %w", err)
	}

	if err := s.recomputeFeaturedSpeaker(ctx, sess); err != nil {
		return model.SessionResponse{}, err
	}

	s.tasks.Enqueue(map[string]string{
		"email":       p.Email,
		"sessionInfo": sess.Name,
	})
	return model.NewSessionResponse(sess), nil
}

// recomputeFeaturedSpeaker promotes the new session's speaker when they
// now hold two or more sessions within the same conference. Promotion is
// one-way: a previously cached speaker is never demoted here.
func (s *Sessions) recomputeFeaturedSpeaker(ctx context.Context, sess *model.Session) error {
	if sess.Speaker == "" {
		return nil
	}
	n, err := s.store.CountSpeakerSessions(ctx, sess.ConferenceID, sess.Speaker)
	if err != nil {
		return fmt.Errorf("count speaker sessions: %w", err)
	}
	if n >= featureMinTalks {
		s.cache.SetFeaturedSpeaker(sess.Speaker)
	}
	return nil
}

// FeaturedSpeaker returns the cached featured speaker, "" when unset.
func (s *Sessions) FeaturedSpeaker() string {
	return s.cache.FeaturedSpeaker()
}

// ByConference lists a conference's sessions, optionally restricted to
// an exact type match.
func (s *Sessions) ByConference(ctx context.Context, conferenceKey, typeOfSession string) ([]model.SessionResponse, error) {
	if _, err := s.store.GetConference(ctx, conferenceKey); err != nil {
		return nil, err
	}
	sessions, err := s.store.SessionsByConference(ctx, conferenceKey, typeOfSession)
	if err != nil {
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

// BySpeaker lists sessions system-wide with an exact speaker match.
func (s *Sessions) BySpeaker(ctx context.Context, speaker string) ([]model.SessionResponse, error) {
	sessions, err := s.store.SessionsBySpeaker(ctx, speaker)
	if err != nil {
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

// Morning lists all sessions starting strictly before noon.
func (s *Sessions) Morning(ctx context.Context) ([]model.SessionResponse, error) {
	sessions, err := s.store.SessionsBefore(ctx, morningCutoff)
	if err != nil {
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

// Afternoon lists all sessions starting at or after noon.
func (s *Sessions) Afternoon(ctx context.Context) ([]model.SessionResponse, error) {
	sessions, err := s.store.SessionsAtOrAfter(ctx, morningCutoff)
	if err != nil {
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

// EarlyNonWorkshops lists sessions starting before 19:00 that are not
// workshops. Both conditions apply together.
func (s *Sessions) EarlyNonWorkshops(ctx context.Context) ([]model.SessionResponse, error) {
	sessions, err := s.store.SessionsBeforeExcludingType(ctx, eveningCutoff, workshopType)
	if err != nil {
		return nil, err
	}
	return toSessionResponses(sessions), nil
}

// AddToWishlist records the session on the user's wishlist. The session
// key must resolve. Duplicate entries for the same (user, session) pair
// are permitted.
func (s *Sessions) AddToWishlist(ctx context.Context, p auth.Principal, sessionKey string) (string, error) {
	sess, err := s.store.GetSession(ctx, sessionKey)
	if err != nil {
		return "", err
	}

	entry := &model.WishlistEntry{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		UserID:    p.UserID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddWishlistEntry(ctx, entry); err != nil {
		return "", fmt.Errorf("add wishlist entry: %w", err)
	}
	return "Successfully added to wishlist: " + sessionKey, nil
}

// Wishlist resolves the user's wishlist entries to sessions in entry
// order. Entries whose session no longer resolves are silently skipped.
func (s *Sessions) Wishlist(ctx context.Context, p auth.Principal) ([]model.SessionResponse, error) {
	entries, err := s.store.WishlistByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]model.SessionResponse, 0, len(entries))
	for _, entry := range entries {
		sess, err := s.store.GetSession(ctx, entry.SessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, model.NewSessionResponse(sess))
	}
	return out, nil
}

// DeleteFromWishlist removes every wishlist entry referencing the
// session, across all users. The broad scope is deliberate, preserved
// from the observed behavior pending product review.
func (s *Sessions) DeleteFromWishlist(ctx context.Context, sessionKey string) (string, error) {
	if _, err := s.store.DeleteWishlistBySession(ctx, sessionKey); err != nil {
		return "", err
	}
	return "wishlist item deleted", nil
}

func toSessionResponses(sessions []*model.Session) []model.SessionResponse {
	out := make([]model.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, model.NewSessionResponse(sess))
	}
	return out
}
