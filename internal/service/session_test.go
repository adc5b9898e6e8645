package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/store"
)

func TestCreateSession_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)

	_, err := env.sessions.Create(ctx, organizer, key, model.CreateSessionRequest{Speaker: "ann"})
	require.ErrorIs(t, err, ErrValidation, "name is required")

	_, err = env.sessions.Create(ctx, organizer, "no-such-key", model.CreateSessionRequest{Name: "Keynote"})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.sessions.Create(ctx, attendee, key, model.CreateSessionRequest{Name: "Keynote"})
	require.ErrorIs(t, err, ErrForbidden, "only the organizer may add sessions")
}

func TestCreateSession_EnqueuesConfirmation(t *testing.T) {
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)
	before := env.tasks.count()

	env.createSession(t, key, "Keynote", "ann", 9)
	require.Equal(t, before+1, env.tasks.count())
}

func TestFeaturedSpeaker_PromotedOnSecondSession(t *testing.T) {
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)

	env.createSession(t, key, "Generics Deep Dive", "ann", 9)
	require.Equal(t, "", env.sessions.FeaturedSpeaker(),
		"one session is not enough")

	env.createSession(t, key, "Channels in Anger", "ann", 14)
	require.Equal(t, "ann", env.sessions.FeaturedSpeaker())

	// A single session for someone else does not demote ann.
	env.createSession(t, key, "Lightning Talk", "bob", 16)
	require.Equal(t, "ann", env.sessions.FeaturedSpeaker())
}

func TestFeaturedSpeaker_ScopedToOneConference(t *testing.T) {
	env := newTestEnv(t)
	keyA := env.createConference(t, "GopherCon", 10)
	keyB := env.createConference(t, "CloudConf", 10)

	env.createSession(t, keyA, "Talk One", "ann", 9)
	env.createSession(t, keyB, "Talk Two", "ann", 10)
	require.Equal(t, "", env.sessions.FeaturedSpeaker(),
		"sessions in different conferences do not combine")
}

func TestSessionScans(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)

	create := func(name, speaker, typ string, hour int) {
		_, err := env.sessions.Create(ctx, organizer, key, model.CreateSessionRequest{
			Name: name, Speaker: speaker, TypeOfSession: typ, StartTime: hour,
		})
		require.NoError(t, err)
	}
	create("Morning Keynote", "ann", "Keynote", 9)
	create("Midday Workshop", "bob", "Workshop", 13)
	create("Evening Workshop", "bob", "Workshop", 18)
	create("Late Lecture", "cat", "Lecture", 20)

	morning, err := env.sessions.Morning(ctx)
	require.NoError(t, err)
	require.Len(t, morning, 1)
	require.Equal(t, "Morning Keynote", morning[0].Name)

	afternoon, err := env.sessions.Afternoon(ctx)
	require.NoError(t, err)
	require.Len(t, afternoon, 3)

	early, err := env.sessions.EarlyNonWorkshops(ctx)
	require.NoError(t, err)
	require.Len(t, early, 1, "before 19:00 AND not a workshop")
	require.Equal(t, "Morning Keynote", early[0].Name)

	workshops, err := env.sessions.ByConference(ctx, key, "Workshop")
	require.NoError(t, err)
	require.Len(t, workshops, 2)

	all, err := env.sessions.ByConference(ctx, key, "")
	require.NoError(t, err)
	require.Len(t, all, 4)

	bySpeaker, err := env.sessions.BySpeaker(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bySpeaker, 2)

	_, err = env.sessions.ByConference(ctx, "no-such-key", "")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWishlist_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)
	sessionKey := env.createSession(t, key, "Keynote", "ann", 9)

	msg, err := env.sessions.AddToWishlist(ctx, attendee, sessionKey)
	require.NoError(t, err)
	require.Equal(t, "Successfully added to wishlist: "+sessionKey, msg)

	list, err := env.sessions.Wishlist(ctx, attendee)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Keynote", list[0].Name)

	other, err := env.sessions.Wishlist(ctx, organizer)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestWishlist_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.AddToWishlist(context.Background(), attendee, "no-such-session")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWishlist_DuplicatesPermitted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)
	sessionKey := env.createSession(t, key, "Keynote", "ann", 9)

	_, err := env.sessions.AddToWishlist(ctx, attendee, sessionKey)
	require.NoError(t, err)
	_, err = env.sessions.AddToWishlist(ctx, attendee, sessionKey)
	require.NoError(t, err)

	list, err := env.sessions.Wishlist(ctx, attendee)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestWishlist_DeleteRemovesAllUsersEntries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)
	sessionKey := env.createSession(t, key, "Keynote", "ann", 9)
	keptKey := env.createSession(t, key, "Workshop", "bob", 14)

	_, err := env.sessions.AddToWishlist(ctx, attendee, sessionKey)
	require.NoError(t, err)
	_, err = env.sessions.AddToWishlist(ctx, organizer, sessionKey)
	require.NoError(t, err)
	_, err = env.sessions.AddToWishlist(ctx, attendee, keptKey)
	require.NoError(t, err)

	msg, err := env.sessions.DeleteFromWishlist(ctx, sessionKey)
	require.NoError(t, err)
	require.Equal(t, "wishlist item deleted", msg)

	mine, err := env.sessions.Wishlist(ctx, attendee)
	require.NoError(t, err)
	require.Len(t, mine, 1, "only the other session survives")
	require.Equal(t, "Workshop", mine[0].Name)

	theirs, err := env.sessions.Wishlist(ctx, organizer)
	require.NoError(t, err)
	require.Empty(t, theirs, "delete is not scoped to the requesting user")
}

func TestWishlist_SkipsUnresolvableSessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)
	sessionKey := env.createSession(t, key, "Keynote", "ann", 9)

	_, err := env.sessions.AddToWishlist(ctx, attendee, sessionKey)
	require.NoError(t, err)

	// A dangling entry referencing a session that no longer resolves.
	require.NoError(t, env.store.AddWishlistEntry(ctx, &model.WishlistEntry{
		ID: "w-dangling", SessionID: "gone", UserID: attendee.UserID,
		CreatedAt: time.Now(),
	}))

	list, err := env.sessions.Wishlist(ctx, attendee)
	require.NoError(t, err)
	require.Len(t, list, 1, "dangling entry silently skipped")
}
