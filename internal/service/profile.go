package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/confcentral/confcentral/internal/auth"
	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/store"
)

// Profiles manages per-user profile state. Profiles are created lazily
// on first access.
type Profiles struct {
	store store.Store
}

// NewProfiles constructs a Profiles service.
func NewProfiles(st store.Store) *Profiles {
	return &Profiles{store: st}
}

// GetOrCreate returns the user's profile, creating one with defaults on
// first access. The display name defaults to the email's local part.
func (s *Profiles) GetOrCreate(ctx context.Context, p auth.Principal) (*model.Profile, error) {
	prof, err := s.store.GetProfile(ctx, p.UserID)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	prof = &model.Profile{
		UserID:       p.UserID,
		DisplayName:  displayNameFromEmail(p.Email),
		MainEmail:    p.Email,
		TeeShirtSize: model.TeeShirtNotSpecified,
	}
	if err := s.store.PutProfile(ctx, prof); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return prof, nil
}

// Get returns the user's profile in wire form.
func (s *Profiles) Get(ctx context.Context, p auth.Principal) (model.ProfileResponse, error) {
	prof, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return model.ProfileResponse{}, err
	}
	return model.NewProfileResponse(prof), nil
}

// Save updates the user-modifiable profile fields, ignoring empty
// values, and returns the updated profile.
func (s *Profiles) Save(ctx context.Context, p auth.Principal, req model.SaveProfileRequest) (model.ProfileResponse, error) {
	prof, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return model.ProfileResponse{}, err
	}

	if name := strings.TrimSpace(req.DisplayName); name != "" {
		prof.DisplayName = name
	}
	if req.TeeShirtSize != "" {
		size, err := model.ParseTeeShirtSize(req.TeeShirtSize)
		if err != nil {
			return model.ProfileResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		prof.TeeShirtSize = size
	}

	if err := s.store.PutProfile(ctx, prof); err != nil {
		return model.ProfileResponse{}, fmt.Errorf("save profile: %w", err)
	}
	return model.NewProfileResponse(prof), nil
}

func displayNameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
