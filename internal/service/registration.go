package service

import (
	"context"
	"log"

	"github.com/confcentral/confcentral/internal/auth"
	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/store"
)

// Registrar performs the atomic register/unregister state transition
// across a user profile and a conference. The profile update and the
// seat-count change commit together or not at all.
type Registrar struct {
	store       store.Store
	profiles    *Profiles
	conferences *Conferences
}

// NewRegistrar constructs a Registrar.
func NewRegistrar(st store.Store, profiles *Profiles, conferences *Conferences) *Registrar {
	return &Registrar{store: st, profiles: profiles, conferences: conferences}
}

// Register books one seat for the user. It fails with store.ErrNotFound
// when the conference key does not resolve, ErrAlreadyRegistered when
// the profile already lists it, and ErrNoSeatsAvailable when the
// conference is full. The seat count can never go below zero: the
// conference row is locked for the whole transaction, so concurrent
// registrations observe each other's decrements.
func (s *Registrar) Register(ctx context.Context, p auth.Principal, conferenceKey string) (bool, error) {
	// Ensure the profile row exists before locking it in the
	// transaction.
	if _, err := s.profiles.GetOrCreate(ctx, p); err != nil {
		return false, err
	}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		conf, err := tx.GetConferenceForUpdate(ctx, conferenceKey)
		if err != nil {
			return err
		}
		prof, err := tx.GetProfileForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}

		if prof.Attending(conferenceKey) {
			return ErrAlreadyRegistered
		}
		if conf.SeatsAvailable <= 0 {
			return ErrNoSeatsAvailable
		}

		prof.ConferenceKeysToAttend = append(prof.ConferenceKeysToAttend, conferenceKey)
		conf.SeatsAvailable--

		if err := tx.PutProfile(ctx, prof); err != nil {
			return err
		}
		return tx.PutConference(ctx, conf)
	})
	if err != nil {
		return false, err
	}

	s.refreshAnnouncement(ctx)
	return true, nil
}

// Unregister releases the user's seat. Unregistering when not
// registered is an idempotent no-op returning false; only an
// unresolvable conference key is an error.
func (s *Registrar) Unregister(ctx context.Context, p auth.Principal, conferenceKey string) (bool, error) {
	if _, err := s.profiles.GetOrCreate(ctx, p); err != nil {
		return false, err
	}

	released := false
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		conf, err := tx.GetConferenceForUpdate(ctx, conferenceKey)
		if err != nil {
			return err
		}
		prof, err := tx.GetProfileForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}

		if !prof.RemoveConferenceKey(conferenceKey) {
			return nil
		}
		released = true
		conf.SeatsAvailable++

		if err := tx.PutProfile(ctx, prof); err != nil {
			return err
		}
		return tx.PutConference(ctx, conf)
	})
	if err != nil {
		return false, err
	}

	if released {
		s.refreshAnnouncement(ctx)
	}
	return released, nil
}

// Attending lists the conferences the user is registered for.
func (s *Registrar) Attending(ctx context.Context, p auth.Principal) ([]model.ConferenceResponse, error) {
	prof, err := s.profiles.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	confs, err := s.store.GetConferences(ctx, prof.ConferenceKeysToAttend)
	if err != nil {
		return nil, err
	}
	return s.conferences.withOrganizerNames(ctx, confs)
}

// refreshAnnouncement recomputes the derived announcement after a seat
// count changed. The cache is advisory, so a failure is only logged.
func (s *Registrar) refreshAnnouncement(ctx context.Context) {
	if _, err := s.conferences.RecomputeAnnouncement(ctx); err != nil {
		log.Printf("announcement recompute: %v", err)
	}
}
