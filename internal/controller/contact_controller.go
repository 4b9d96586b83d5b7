package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/service"
)

type ContactController struct {
	ContactService *service.ContactService
}

// ListContacts supports ?search= (name or phone) and ?tag= filters.
func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := httputil.PageParams(r)
	q := r.URL.Query()

	contacts, pagination, err := c.ContactService.List(r.Context(), auth.UserID(r.Context()), q.Get("search"), q.Get("tag"), page, pageSize)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Page(w, contacts, pagination)
}

func (c *ContactController) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := c.ContactService.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, contact)
}

func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	var body service.ContactInput
	if !httputil.Decode(w, r, &body) {
		return
	}

	contact, err := c.ContactService.Create(r.Context(), auth.UserID(r.Context()), body)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, contact)
}

// ImportContacts takes {"contacts": [...]} and reports a per-row outcome.
func (c *ContactController) ImportContacts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contacts []service.ContactInput `json:"contacts"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}

	result, err := c.ContactService.Import(r.Context(), auth.UserID(r.Context()), body.Contacts)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, result)
}

func (c *ContactController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var patch model.ContactPatch
	if !httputil.Decode(w, r, &patch) {
		return
	}

	contact, err := c.ContactService.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, contact)
}

func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := c.ContactService.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
