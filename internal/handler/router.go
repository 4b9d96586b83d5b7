// Package handler assembles the HTTP surface: middleware stack and routes.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unclebandit/wabulk-backend/internal/controller"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/ratelimit"
)

// Router holds everything the routes are wired to. Limiter may be nil.
type Router struct {
	Tokens    TokenParser
	Limiter   ratelimit.Limiter
	Contacts  *controller.ContactController
	Templates *controller.TemplateController
	Campaigns *controller.CampaignController
	Media     *controller.MediaController
	Messages  *controller.MessageController
}

// Handler builds the chi router.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(rt.Tokens))
		if rt.Limiter != nil {
			r.Use(RateLimit(rt.Limiter))
		}

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", rt.Contacts.ListContacts)
			r.Post("/", rt.Contacts.CreateContact)
			r.Post("/import", rt.Contacts.ImportContacts)
			r.Get("/{id}", rt.Contacts.GetContact)
			r.Patch("/{id}", rt.Contacts.UpdateContact)
			r.Delete("/{id}", rt.Contacts.DeleteContact)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", rt.Templates.ListTemplates)
			r.Post("/", rt.Templates.CreateTemplate)
			r.Get("/{id}", rt.Templates.GetTemplate)
			r.Patch("/{id}", rt.Templates.UpdateTemplate)
			r.Delete("/{id}", rt.Templates.DeleteTemplate)
			r.Post("/{id}/preview", rt.Templates.PreviewTemplate)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", rt.Campaigns.ListCampaigns)
			r.Post("/", rt.Campaigns.CreateCampaign)
			r.Get("/{id}", rt.Campaigns.GetCampaignDetails)
			r.Patch("/{id}", rt.Campaigns.UpdateCampaign)
			r.Delete("/{id}", rt.Campaigns.DeleteCampaign)
			r.Post("/{id}/send", rt.Campaigns.SendCampaign)
			r.Post("/{id}/preview", rt.Campaigns.PreviewCampaign)
			r.Get("/{id}/messages", rt.Campaigns.ListMessages)
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", rt.Media.ListMedia)
			r.Post("/", rt.Media.UploadMedia)
			r.Delete("/{id}", rt.Media.DeleteMedia)
		})

		r.Post("/messages/send", rt.Messages.SendMessage)
	})

	return r
}
