package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/civigo/grievance-backend/internal/auth"
	"github.com/civigo/grievance-backend/internal/handlers"
	"github.com/civigo/grievance-backend/internal/middleware"
)

// Options carries the policy knobs the route table depends on.
type Options struct {
	Verifier *auth.Verifier

	// AllGrievancesOfficialOnly gates /all-grievances on the official
	// role. The reference deployments were inconsistent here; the
	// stricter reading is the default.
	AllGrievancesOfficialOnly bool
}

// SetupRoutes registers the public API.
func SetupRoutes(r chi.Router, h *handlers.Handler, opts Options) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(opts.Verifier))

		r.Get("/user-grievances", h.UserGrievances)
		r.Post("/addinfo", h.SubmitGrievance)
		r.Post("/addchat", h.AddChat)
		r.Patch("/updatestatus", h.UpdateStatus)

		if opts.AllGrievancesOfficialOnly {
			r.With(middleware.RequireOfficial).Get("/all-grievances", h.AllGrievances)
		} else {
			r.Get("/all-grievances", h.AllGrievances)
		}
	})
}
