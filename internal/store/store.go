// Package store is the entity persistence boundary. It exposes key-based
// reads and writes, scoped scans, and an atomic transaction primitive for
// the registration state transition.
//
// Two implementations exist: Postgres for production and Memory for
// tests. Both guarantee that transactions against the same conference
// serialize, so seat counts never go negative or exceed capacity.
package store

import (
	"context"
	"errors"

	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/query"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store is the full persistence contract consumed by the service layer.
type Store interface {
	// Profiles.
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	PutProfile(ctx context.Context, p *model.Profile) error
	// GetProfiles batch-reads profiles by user ID; missing IDs are
	// simply absent from the result.
	GetProfiles(ctx context.Context, userIDs []string) (map[string]*model.Profile, error)

	// Conferences.
	PutConference(ctx context.Context, c *model.Conference) error
	GetConference(ctx context.Context, id string) (*model.Conference, error)
	// GetConferences batch-reads conferences preserving input order;
	// unresolvable IDs are skipped.
	GetConferences(ctx context.Context, ids []string) ([]*model.Conference, error)
	ConferencesByOrganizer(ctx context.Context, userID string) ([]*model.Conference, error)
	QueryConferences(ctx context.Context, plan query.Plan) ([]*model.Conference, error)
	// NearlySoldOut returns conferences with 0 < seatsAvailable <= 5,
	// ordered by name.
	NearlySoldOut(ctx context.Context) ([]*model.Conference, error)

	// Sessions.
	PutSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// SessionsByConference lists a conference's sessions, optionally
	// restricted to an exact session type when typeOfSession != "".
	SessionsByConference(ctx context.Context, conferenceID, typeOfSession string) ([]*model.Session, error)
	SessionsBySpeaker(ctx context.Context, speaker string) ([]*model.Session, error)
	CountSpeakerSessions(ctx context.Context, conferenceID, speaker string) (int, error)
	SessionsBefore(ctx context.Context, hour int) ([]*model.Session, error)
	SessionsAtOrAfter(ctx context.Context, hour int) ([]*model.Session, error)
	SessionsBeforeExcludingType(ctx context.Context, hour int, typeOfSession string) ([]*model.Session, error)

	// Wishlist.
	AddWishlistEntry(ctx context.Context, e *model.WishlistEntry) error
	WishlistByUser(ctx context.Context, userID string) ([]*model.WishlistEntry, error)
	// DeleteWishlistBySession removes every entry referencing the
	// session, regardless of owner, returning the number removed.
	DeleteWishlistBySession(ctx context.Context, sessionID string) (int, error)

	// InTx runs fn atomically. Writes issued through the Tx become
	// visible only when fn returns nil; any error rolls everything back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the unit-of-work view handed to InTx callbacks. ForUpdate reads
// take exclusive locks so concurrent transactions on the same rows
// serialize.
type Tx interface {
	GetConferenceForUpdate(ctx context.Context, id string) (*model.Conference, error)
	GetProfileForUpdate(ctx context.Context, userID string) (*model.Profile, error)
	PutConference(ctx context.Context, c *model.Conference) error
	PutProfile(ctx context.Context, p *model.Profile) error
}
