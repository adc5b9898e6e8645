package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/query"
	"github.com/confcentral/confcentral/internal/store"
)

func TestCreateConference_AppliesDefaultsAndNotifies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	conf, err := env.conferences.Create(ctx, organizer, model.CreateConferenceRequest{
		Name:         "GopherCon",
		StartDate:    "2026-06-15",
		MaxAttendees: 100,
	})
	require.NoError(t, err)
	require.Equal(t, "Default City", conf.City)
	require.Equal(t, []string{"Default", "Topic"}, conf.Topics)
	require.Equal(t, 6, conf.Month)
	require.Equal(t, 100, conf.SeatsAvailable)
	require.Equal(t, organizer.UserID, conf.OrganizerUserID)
	require.Equal(t, "wes", conf.OrganizerDisplayName, "lazily created profile names the organizer")
	require.Equal(t, 1, env.tasks.count(), "confirmation email enqueued")
}

func TestCreateConference_RequiresName(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.conferences.Create(context.Background(), organizer, model.CreateConferenceRequest{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateConference_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)

	_, err := env.conferences.Update(ctx, attendee, key, model.UpdateConferenceRequest{City: "Paris"})
	require.ErrorIs(t, err, ErrForbidden)

	conf, err := env.store.GetConference(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "London", conf.City, "rejected update must not change anything")
}

func TestUpdateConference_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	key := env.createConference(t, "GopherCon", 10)

	updated, err := env.conferences.Update(ctx, organizer, key, model.UpdateConferenceRequest{
		City:      "Berlin",
		StartDate: "2026-09-01",
	})
	require.NoError(t, err)
	require.Equal(t, "Berlin", updated.City)
	require.Equal(t, 9, updated.Month, "month re-derived from the new start date")
	require.Equal(t, "GopherCon", updated.Name, "empty fields untouched")
	require.Equal(t, 10, updated.SeatsAvailable)
}

func TestUpdateConference_UnknownKey(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.conferences.Update(context.Background(), organizer, "no-such-key",
		model.UpdateConferenceRequest{City: "Paris"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestQueryConferences_FiltersAndResolvesOrganizers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createConference(t, "GopherCon", 10)

	_, err := env.conferences.Create(ctx, organizer, model.CreateConferenceRequest{
		Name: "RustConf", City: "Paris", MaxAttendees: 10,
	})
	require.NoError(t, err)

	confs, err := env.conferences.Query(ctx, model.QueryConferencesRequest{
		Filters: []model.Filter{{Field: "CITY", Operator: "EQ", Value: "London"}},
	})
	require.NoError(t, err)
	require.Len(t, confs, 1)
	require.Equal(t, "GopherCon", confs[0].Name)
	require.Equal(t, "wes", confs[0].OrganizerDisplayName)
}

func TestQueryConferences_InvalidFilterSurfaces(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.conferences.Query(context.Background(), model.QueryConferencesRequest{
		Filters: []model.Filter{
			{Field: "MONTH", Operator: "GT", Value: "3"},
			{Field: "MAX_ATTENDEES", Operator: "LT", Value: "100"},
		},
	})
	require.ErrorIs(t, err, query.ErrInvalidFilter)
}

func TestRecomputeAnnouncement_SelectsNearlySoldOut(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	put := func(id, name string, seats int) {
		require.NoError(t, env.store.PutConference(ctx, &model.Conference{
			ID: id, Name: name, OrganizerUserID: organizer.UserID,
			MaxAttendees: 20, SeatsAvailable: seats,
		}))
	}
	put("c0", "Sold Out Expo", 0)
	put("c3", "Almost Gone Summit", 3)
	put("c10", "Roomy Con", 10)

	msg, err := env.conferences.RecomputeAnnouncement(ctx)
	require.NoError(t, err)
	require.Equal(t,
		"Last chance to attend! The following conferences are nearly sold out: Almost Gone Summit",
		msg)
	require.Equal(t, msg, env.conferences.Announcement())

	// Recomputing with unchanged data is idempotent.
	again, err := env.conferences.RecomputeAnnouncement(ctx)
	require.NoError(t, err)
	require.Equal(t, msg, again)
}

func TestRecomputeAnnouncement_ClearsWhenNoneQualify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.store.PutConference(ctx, &model.Conference{
		ID: "c1", Name: "Almost Gone", OrganizerUserID: organizer.UserID,
		MaxAttendees: 20, SeatsAvailable: 2,
	}))

	_, err := env.conferences.RecomputeAnnouncement(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, env.conferences.Announcement())

	require.NoError(t, env.store.PutConference(ctx, &model.Conference{
		ID: "c1", Name: "Almost Gone", OrganizerUserID: organizer.UserID,
		MaxAttendees: 20, SeatsAvailable: 0,
	}))
	msg, err := env.conferences.RecomputeAnnouncement(ctx)
	require.NoError(t, err)
	require.Equal(t, "", msg)
	require.Equal(t, "", env.conferences.Announcement())
}

func TestGetConferencesCreated(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createConference(t, "First", 10)
	env.createConference(t, "Second", 10)

	created, err := env.conferences.Created(ctx, organizer)
	require.NoError(t, err)
	require.Len(t, created, 2)

	other, err := env.conferences.Created(ctx, attendee)
	require.NoError(t, err)
	require.Empty(t, other)
}
