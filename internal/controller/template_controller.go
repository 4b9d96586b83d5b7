package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/service"
)

type TemplateController struct {
	TemplateService *service.TemplateService
}

func (c *TemplateController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.TemplateService.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, templates)
}

func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := c.TemplateService.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, tpl)
}

func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var body service.TemplateInput
	if !httputil.Decode(w, r, &body) {
		return
	}

	tpl, err := c.TemplateService.Create(r.Context(), auth.UserID(r.Context()), body)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, tpl)
}

func (c *TemplateController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var patch model.TemplatePatch
	if !httputil.Decode(w, r, &patch) {
		return
	}

	tpl, err := c.TemplateService.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, tpl)
}

func (c *TemplateController) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := c.TemplateService.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// PreviewTemplate renders the template with {"variables": {...}} sample values.
func (c *TemplateController) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Variables map[string]string `json:"variables"`
	}
	if r.ContentLength != 0 {
		if !httputil.Decode(w, r, &body) {
			return
		}
	}

	preview, err := c.TemplateService.Preview(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), body.Variables)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, preview)
}
