package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/confcentral/confcentral/internal/auth"
	"github.com/confcentral/confcentral/internal/cache"
	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/query"
	"github.com/confcentral/confcentral/internal/store"
)

const announcementTpl = "Last chance to attend! The following conferences " +
	"are nearly sold out: %s"

// Conferences manages conference publishing, the dynamic filter query,
// and the nearly-sold-out announcement.
type Conferences struct {
	store    store.Store
	cache    *cache.Cache
	tasks    Dispatcher
	profiles *Profiles
}

// NewConferences constructs a Conferences service.
func NewConferences(st store.Store, c *cache.Cache, tasks Dispatcher, profiles *Profiles) *Conferences {
	return &Conferences{store: st, cache: c, tasks: tasks, profiles: profiles}
}

// Create publishes a new conference owned by the authenticated user and
// enqueues a confirmation email.
func (s *Conferences) Create(ctx context.Context, p auth.Principal, req model.CreateConferenceRequest) (model.ConferenceResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.ConferenceResponse{}, fmt.Errorf("%w: conference name is required", ErrValidation)
	}
	if req.MaxAttendees < 0 {
		return model.ConferenceResponse{}, fmt.Errorf("%w: max_attendees cannot be negative", ErrValidation)
	}

	// The organizer profile must exist before the conference can
	// reference it.
	prof, err := s.profiles.GetOrCreate(ctx, p)
	if err != nil {
		return model.ConferenceResponse{}, err
	}

	conf, err := model.NewConference(uuid.NewString(), p.UserID, req, time.Now().UTC())
	if err != nil {
		return model.ConferenceResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.PutConference(ctx, conf); err != nil {
		return model.ConferenceResponse{}, fmt.Errorf("create conference: %w", err)
	}

	s.tasks.Enqueue(map[string]string{
		"email":          p.Email,
		"conferenceInfo": conf.Name,
	})
	return model.NewConferenceResponse(conf, prof.DisplayName), nil
}

// Update applies a partial update to a conference. Only the owning
// organizer may update; empty fields are left untouched; a changed start
// date re-derives the month.
func (s *Conferences) Update(ctx context.Context, p auth.Principal, conferenceKey string, req model.UpdateConferenceRequest) (model.ConferenceResponse, error) {
	var updated *model.Conference
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		conf, err := tx.GetConferenceForUpdate(ctx, conferenceKey)
		if err != nil {
			return err
		}
		if conf.OrganizerUserID != p.UserID {
			return ErrForbidden
		}

		if name := strings.TrimSpace(req.Name); name != "" {
			conf.Name = name
		}
		if city := strings.TrimSpace(req.City); city != "" {
			conf.City = city
		}
		if len(req.Topics) > 0 {
			conf.Topics = req.Topics
		}
		if req.StartDate != "" {
			start, err := model.ParseDate(req.StartDate)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			conf.StartDate = start
			conf.Month = int(start.Month())
		}
		if req.EndDate != "" {
			end, err := model.ParseDate(req.EndDate)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			conf.EndDate = end
		}

		updated = conf
		return tx.PutConference(ctx, conf)
	})
	if err != nil {
		return model.ConferenceResponse{}, err
	}

	displayName, err := s.organizerName(ctx, updated.OrganizerUserID)
	if err != nil {
		return model.ConferenceResponse{}, err
	}
	return model.NewConferenceResponse(updated, displayName), nil
}

// Get returns a conference by its websafe key. No authentication is
// required.
func (s *Conferences) Get(ctx context.Context, conferenceKey string) (model.ConferenceResponse, error) {
	conf, err := s.store.GetConference(ctx, conferenceKey)
	if err != nil {
		return model.ConferenceResponse{}, err
	}
	displayName, err := s.organizerName(ctx, conf.OrganizerUserID)
	if err != nil {
		return model.ConferenceResponse{}, err
	}
	return model.NewConferenceResponse(conf, displayName), nil
}

// Created lists the conferences the authenticated user organizes.
func (s *Conferences) Created(ctx context.Context, p auth.Principal) ([]model.ConferenceResponse, error) {
	prof, err := s.profiles.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	confs, err := s.store.ConferencesByOrganizer(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]model.ConferenceResponse, 0, len(confs))
	for _, conf := range confs {
		out = append(out, model.NewConferenceResponse(conf, prof.DisplayName))
	}
	return out, nil
}

// Query runs the dynamic filter query. Filters are validated and
// coerced before touching the store; organizer display names resolve
// through one batched profile read.
func (s *Conferences) Query(ctx context.Context, req model.QueryConferencesRequest) ([]model.ConferenceResponse, error) {
	plan, err := query.Build(req.Filters)
	if err != nil {
		return nil, err
	}
	confs, err := s.store.QueryConferences(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.withOrganizerNames(ctx, confs)
}

// RecomputeAnnouncement derives the nearly-sold-out announcement from
// the current seat counts and republishes it. With no qualifying
// conferences the cache entry is cleared. Idempotent for unchanged data.
func (s *Conferences) RecomputeAnnouncement(ctx context.Context) (string, error) {
	confs, err := s.store.NearlySoldOut(ctx)
	if err != nil {
		return "", fmt.Errorf("scan nearly sold out: %w", err)
	}
	if len(confs) == 0 {
		s.cache.ClearAnnouncement()
		return "", nil
	}

	names := make([]string, 0, len(confs))
	for _, conf := range confs {
		names = append(names, conf.Name)
	}
	msg := fmt.Sprintf(announcementTpl, strings.Join(names, ", "))
	s.cache.SetAnnouncement(msg)
	return msg, nil
}

// Announcement returns the cached announcement, "" when none is set.
func (s *Conferences) Announcement() string {
	return s.cache.Announcement()
}

// withOrganizerNames assembles wire responses, resolving organizer
// display names with one batched profile read.
func (s *Conferences) withOrganizerNames(ctx context.Context, confs []*model.Conference) ([]model.ConferenceResponse, error) {
	ids := make([]string, 0, len(confs))
	seen := make(map[string]bool, len(confs))
	for _, conf := range confs {
		if !seen[conf.OrganizerUserID] {
			seen[conf.OrganizerUserID] = true
			ids = append(ids, conf.OrganizerUserID)
		}
	}
	profiles, err := s.store.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.ConferenceResponse, 0, len(confs))
	for _, conf := range confs {
		name := ""
		if prof, ok := profiles[conf.OrganizerUserID]; ok {
			name = prof.DisplayName
		}
		out = append(out, model.NewConferenceResponse(conf, name))
	}
	return out, nil
}

func (s *Conferences) organizerName(ctx context.Context, userID string) (string, error) {
	profiles, err := s.store.GetProfiles(ctx, []string{userID})
	if err != nil {
		return "", err
	}
	if prof, ok := profiles[userID]; ok {
		return prof.DisplayName, nil
	}
	return "", nil
}
