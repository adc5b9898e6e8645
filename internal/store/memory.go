package store

import (
	"context"
	"sort"
	"sync"

	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/query"
)

// Memory implements Store entirely in process. It backs the service and
// handler tests. A single mutex serializes transactions, standing in for
// the row locks the Postgres implementation takes with FOR UPDATE.
type Memory struct {
	mu          sync.RWMutex
	profiles    map[string]*model.Profile
	conferences map[string]*model.Conference
	sessions    map[string]*model.Session
	sessionIDs  []string // insertion order
	wishlist    []*model.WishlistEntry
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles:    make(map[string]*model.Profile),
		conferences: make(map[string]*model.Conference),
		sessions:    make(map[string]*model.Session),
	}
}

// ── Profiles ─────────────────────────────────────────────────────────────

func (m *Memory) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *Memory) PutProfile(ctx context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p.Clone()
	return nil
}

func (m *Memory) GetProfiles(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*model.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := m.profiles[id]; ok {
			out[id] = p.Clone()
		}
	}
	return out, nil
}

// ── Conferences ──────────────────────────────────────────────────────────

func (m *Memory) PutConference(ctx context.Context, c *model.Conference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conferences[c.ID] = c.Clone()
	return nil
}

func (m *Memory) GetConference(ctx context.Context, id string) (*model.Conference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conferences[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (m *Memory) GetConferences(ctx context.Context, ids []string) ([]*model.Conference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Conference, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.conferences[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (m *Memory) ConferencesByOrganizer(ctx context.Context, userID string) ([]*model.Conference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Conference
	for _, c := range m.conferences {
		if c.OrganizerUserID == userID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) QueryConferences(ctx context.Context, plan query.Plan) ([]*model.Conference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Conference
	for _, c := range m.conferences {
		if plan.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return plan.Less(out[i], out[j]) })
	return out, nil
}

func (m *Memory) NearlySoldOut(ctx context.Context) ([]*model.Conference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Conference
	for _, c := range m.conferences {
		if c.SeatsAvailable > 0 && c.SeatsAvailable <= 5 {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Sessions ─────────────────────────────────────────────────────────────

func (m *Memory) PutSession(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		m.sessionIDs = append(m.sessionIDs, s.ID)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *Memory) GetSession(ctx context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// scanSessions walks sessions in insertion order, collecting matches.
func (m *Memory) scanSessions(match func(*model.Session) bool) []*model.Session {
	var out []*model.Session
	for _, id := range m.sessionIDs {
		if s := m.sessions[id]; match(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (m *Memory) SessionsByConference(ctx context.Context, conferenceID, typeOfSession string) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanSessions(func(s *model.Session) bool {
		if s.ConferenceID != conferenceID {
			return false
		}
		return typeOfSession == "" || s.TypeOfSession == typeOfSession
	}), nil
}

func (m *Memory) SessionsBySpeaker(ctx context.Context, speaker string) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanSessions(func(s *model.Session) bool { return s.Speaker == speaker }), nil
}

func (m *Memory) CountSpeakerSessions(ctx context.Context, conferenceID, speaker string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if s.ConferenceID == conferenceID && s.Speaker == speaker {
			n++
		}
	}
	return n, nil
}

func (m *Memory) SessionsBefore(ctx context.Context, hour int) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanSessions(func(s *model.Session) bool { return s.StartTime < hour }), nil
}

func (m *Memory) SessionsAtOrAfter(ctx context.Context, hour int) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanSessions(func(s *model.Session) bool { return s.StartTime >= hour }), nil
}

func (m *Memory) SessionsBeforeExcludingType(ctx context.Context, hour int, typeOfSession string) ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanSessions(func(s *model.Session) bool {
		return s.StartTime < hour && s.TypeOfSession != typeOfSession
	}), nil
}

// ── Wishlist ─────────────────────────────────────────────────────────────

func (m *Memory) AddWishlistEntry(ctx context.Context, e *model.WishlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.wishlist = append(m.wishlist, &cp)
	return nil
}

func (m *Memory) WishlistByUser(ctx context.Context, userID string) ([]*model.WishlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.WishlistEntry
	for _, e := range m.wishlist {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) DeleteWishlistBySession(ctx context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.wishlist[:0]
	removed := 0
	for _, e := range m.wishlist {
		if e.SessionID == sessionID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.wishlist = kept
	return removed, nil
}

// ── Transactions ─────────────────────────────────────────────────────────

// InTx holds the write lock for the whole unit of work, so concurrent
// transactions serialize exactly as they do under Postgres row locks.
// Writes buffer in the Tx and apply only when fn succeeds.
func (m *Memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		m:           m,
		conferences: make(map[string]*model.Conference),
		profiles:    make(map[string]*model.Profile),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for id, c := range tx.conferences {
		m.conferences[id] = c
	}
	for id, p := range tx.profiles {
		m.profiles[id] = p
	}
	return nil
}

type memoryTx struct {
	m           *Memory
	conferences map[string]*model.Conference // buffered writes
	profiles    map[string]*model.Profile
}

func (t *memoryTx) GetConferenceForUpdate(ctx context.Context, id string) (*model.Conference, error) {
	if c, ok := t.conferences[id]; ok {
		return c.Clone(), nil
	}
	c, ok := t.m.conferences[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (t *memoryTx) GetProfileForUpdate(ctx context.Context, userID string) (*model.Profile, error) {
	if p, ok := t.profiles[userID]; ok {
		return p.Clone(), nil
	}
	p, ok := t.m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (t *memoryTx) PutConference(ctx context.Context, c *model.Conference) error {
	t.conferences[c.ID] = c.Clone()
	return nil
}

func (t *memoryTx) PutProfile(ctx context.Context, p *model.Profile) error {
	t.profiles[p.UserID] = p.Clone()
	return nil
}
