// internal/controller/campaign_controller.go
package controller

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !httputil.Decode(w, r, &body) {
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), auth.UserID(r.Context()), body)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, pageSize := httputil.PageParams(r)
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), auth.UserID(r.Context()), status, page, pageSize)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Page(w, campaigns, pagination)
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	details, err := c.CampaignService.GetCampaignDetailsWithStats(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, details)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var patch model.CampaignPatch
	if !httputil.Decode(w, r, &patch) {
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.DeleteCampaign(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// SendCampaign runs the dispatch inline (200) or queues it (202). An empty
// body selects every contact.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.SendRequest
	if r.ContentLength != 0 {
		if !httputil.Decode(w, r, &body) {
			return
		}
	}

	result, err := c.CampaignService.SendCampaign(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), body)
	if err != nil && result != nil && result.Result != nil {
		logger.Error("campaign sent but status not saved", "campaign_id", result.CampaignID, "error", err.Error())
		httputil.Fail(w, http.StatusInternalServerError, appErrors.CodeInternal, fmt.Sprintf(
			"campaign was sent (%d sent, %d failed) but its status could not be saved",
			result.Result.Sent, result.Result.Failed))
		return
	}
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if result.Queued {
		httputil.Accepted(w, result)
		return
	}
	httputil.OK(w, result)
}

// PreviewCampaign renders the campaign for one contact without sending it.
func (c *CampaignController) PreviewCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.PreviewRequest
	if !httputil.Decode(w, r, &body) {
		return
	}

	preview, err := c.CampaignService.RenderPreview(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), body)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.OK(w, preview)
}

func (c *CampaignController) ListMessages(w http.ResponseWriter, r *http.Request) {
	page, pageSize := httputil.PageParams(r)

	msgs, pagination, err := c.CampaignService.ListMessages(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Page(w, msgs, pagination)
}
