package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confcentral/confcentral/internal/auth"
	"github.com/confcentral/confcentral/internal/cache"
	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/store"
)

// recordingDispatcher captures enqueued task payloads for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	payloads []map[string]string
}

func (d *recordingDispatcher) Enqueue(params map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, params)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.payloads)
}

type testEnv struct {
	store       *store.Memory
	cache       *cache.Cache
	tasks       *recordingDispatcher
	profiles    *Profiles
	conferences *Conferences
	registrar   *Registrar
	sessions    *Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemory()
	c := cache.New()
	tasks := &recordingDispatcher{}
	profiles := NewProfiles(st)
	conferences := NewConferences(st, c, tasks, profiles)
	return &testEnv{
		store:       st,
		cache:       c,
		tasks:       tasks,
		profiles:    profiles,
		conferences: conferences,
		registrar:   NewRegistrar(st, profiles, conferences),
		sessions:    NewSessions(st, c, tasks),
	}
}

var (
	organizer = auth.Principal{UserID: "organizer-1", Email: "wes@example.com"}
	attendee  = auth.Principal{UserID: "attendee-1", Email: "ann@example.com"}
)

// createConference publishes a conference with the given capacity and
// returns its websafe key.
func (e *testEnv) createConference(t *testing.T, name string, maxAttendees int) string {
	t.Helper()
	conf, err := e.conferences.Create(context.Background(), organizer, model.CreateConferenceRequest{
		Name:         name,
		City:         "London",
		Topics:       []string{"Go"},
		MaxAttendees: maxAttendees,
	})
	require.NoError(t, err)
	return conf.WebsafeKey
}

// createSession adds a session under the conference and returns its key.
func (e *testEnv) createSession(t *testing.T, conferenceKey, name, speaker string, hour int) string {
	t.Helper()
	sess, err := e.sessions.Create(context.Background(), organizer, conferenceKey, model.CreateSessionRequest{
		Name:      name,
		Speaker:   speaker,
		StartTime: hour,
	})
	require.NoError(t, err)
	return sess.WebsafeKey
}

// seats reads the current seat count straight from the store.
func (e *testEnv) seats(t *testing.T, conferenceKey string) int {
	t.Helper()
	conf, err := e.store.GetConference(context.Background(), conferenceKey)
	require.NoError(t, err)
	return conf.SeatsAvailable
}

// user fabricates distinct principals for fan-out tests.
func user(n int) auth.Principal {
	return auth.Principal{
		UserID: fmt.Sprintf("user-%d", n),
		Email:  fmt.Sprintf("user-%d@example.com", n),
	}
}
