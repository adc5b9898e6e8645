package handler

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/confcentral/confcentral/internal/auth"
)

// Router builds the full route tree. Mutating endpoints and personal
// reads require a bearer token; lookups and the derived-state reads are
// public.
func Router(api *API, jwtSecret []byte) chi.Router {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)                    // permissive CORS for browser clients

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/health", HealthCheck)
		r.Post("/conferences/query", api.QueryConferences)
		r.Get("/conferences/{key}", api.GetConference)
		r.Get("/conferences/{key}/sessions", api.GetConferenceSessions)
		r.Get("/sessions/speaker/{speaker}", api.GetSessionsBySpeaker)
		r.Get("/sessions/morning", api.GetMorningSessions)
		r.Get("/sessions/afternoon", api.GetAfternoonSessions)
		r.Get("/sessions/early-non-workshops", api.GetEarlyNonWorkshops)
		r.Get("/featured-speaker", api.GetFeaturedSpeaker)
		r.Get("/announcement", api.GetAnnouncement)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))
		r.Post("/conferences", api.CreateConference)
		r.Get("/conferences/created", api.GetConferencesCreated)
		r.Get("/conferences/attending", api.GetConferencesToAttend)
		r.Put("/conferences/{key}", api.UpdateConference)
		r.Post("/conferences/{key}/register", api.Register)
		r.Delete("/conferences/{key}/register", api.Unregister)
		r.Post("/conferences/{key}/sessions", api.CreateSession)
		r.Post("/wishlist", api.AddToWishlist)
		r.Get("/wishlist", api.GetWishlist)
		r.Delete("/wishlist/{sessionKey}", api.DeleteFromWishlist)
		r.Get("/profile", api.GetProfile)
		r.Post("/profile", api.SaveProfile)
	})

	return r
}
