package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	"github.com/unclebandit/wabulk-backend/internal/controller"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/queue"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/service"
	"github.com/unclebandit/wabulk-backend/internal/whatsapp"
)

const testUser = "00000000-0000-0000-0000-000000000001"

// asUser stands in for the auth middleware.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &auth.Claims{}
			claims.Subject = userID
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination map[string]int  `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type capturingQueue struct{ jobs [][]byte }

func (q *capturingQueue) Publish(_ string, payload any) error {
	b, err := json.Marshal(payload)
	q.jobs = append(q.jobs, b)
	return err
}

func (q *capturingQueue) Subscribe(string, queue.Handler) error { return nil }

type acceptAll struct{}

func (acceptAll) Send(_ context.Context, msg whatsapp.OutgoingMessage) (*whatsapp.SendResult, error) {
	if msg.Phone == "5511900000002" {
		return nil, fmt.Errorf("number not on whatsapp")
	}
	return &whatsapp.SendResult{ExternalID: "ext-" + msg.Phone}, nil
}

func campaignRouter(store *repository.MemoryStore, q *capturingQueue) http.Handler {
	svc := &service.CampaignService{
		CampaignRepo: store.Campaigns(),
		TemplateRepo: store.Templates(),
		ContactRepo:  store.Contacts(),
		OutboundRepo: store.Messages(),
		Dispatcher: &service.BulkDispatcher{
			Campaigns: store.Campaigns(),
			Messages:  store.Messages(),
			Sender:    acceptAll{},
			Renderer:  service.NewRenderer(time.UTC, ""),
			Sleep:     func(time.Duration) {},
		},
	}
	if q != nil {
		svc.Queue = q
	}
	ctrl := &controller.CampaignController{CampaignService: svc}

	r := chi.NewRouter()
	r.Use(asUser(testUser))
	r.Get("/campaigns", ctrl.ListCampaigns)
	r.Post("/campaigns", ctrl.CreateCampaign)
	r.Get("/campaigns/{id}", ctrl.GetCampaignDetails)
	r.Patch("/campaigns/{id}", ctrl.UpdateCampaign)
	r.Delete("/campaigns/{id}", ctrl.DeleteCampaign)
	r.Post("/campaigns/{id}/send", ctrl.SendCampaign)
	r.Post("/campaigns/{id}/preview", ctrl.PreviewCampaign)
	r.Get("/campaigns/{id}/messages", ctrl.ListMessages)
	return r
}

func createCampaign(t *testing.T, h http.Handler, name, message string) model.Campaign {
	t.Helper()
	w := do(t, h, http.MethodPost, "/campaigns", map[string]any{"name": name, "message": message})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c model.Campaign
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &c))
	return c
}

func TestCreateCampaignHandler(t *testing.T) {
	h := campaignRouter(repository.NewMemoryStore(), nil)

	c := createCampaign(t, h, "Promo", "Hi {{name}}")
	assert.Equal(t, "Promo", c.Name)
	assert.Equal(t, model.CampaignDraft, c.Status)
	assert.Equal(t, testUser, c.UserID)

	w := do(t, h, http.MethodPost, "/campaigns", map[string]any{"message": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w).Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", bytes.NewBufferString("{oops"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCampaignsPagination(t *testing.T) {
	store := repository.NewMemoryStore()
	h := campaignRouter(store, nil)

	totalCampaigns := 25
	for i := 1; i <= totalCampaigns; i++ {
		createCampaign(t, h, "Campaign "+strconv.Itoa(i), "Hi")
	}

	pageSize := 10
	seen := map[string]bool{}
	totalPages := (totalCampaigns + pageSize - 1) / pageSize

	for page := 1; page <= totalPages; page++ {
		w := do(t, h, http.MethodGet, fmt.Sprintf("/campaigns?page=%d&page_size=%d&status=draft", page, pageSize), nil)
		require.Equal(t, http.StatusOK, w.Code)

		env := decode(t, w)
		assert.Equal(t, page, env.Pagination["page"])
		assert.Equal(t, pageSize, env.Pagination["page_size"])
		assert.Equal(t, totalCampaigns, env.Pagination["total_count"])
		assert.Equal(t, totalPages, env.Pagination["total_pages"])

		var campaigns []model.Campaign
		require.NoError(t, json.Unmarshal(env.Data, &campaigns))
		for _, c := range campaigns {
			assert.False(t, seen[c.ID], "duplicate campaign %s across pages", c.ID)
			seen[c.ID] = true
			assert.Equal(t, model.CampaignDraft, c.Status)
		}
	}
	assert.Len(t, seen, totalCampaigns)
}

func TestGetCampaignNotFound(t *testing.T) {
	h := campaignRouter(repository.NewMemoryStore(), nil)
	w := do(t, h, http.MethodGet, "/campaigns/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w).Error.Code)
}

func TestSendCampaignHandler(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	for i, phone := range []string{"11 90000-0001", "11 90000-0002", "11 90000-0003"} {
		require.NoError(t, store.Contacts().Create(ctx, &model.Contact{
			ID: fmt.Sprintf("c%d", i+1), UserID: testUser, Name: "Contact", Phone: phone,
		}))
	}
	h := campaignRouter(store, nil)
	c := createCampaign(t, h, "Promo", "Hi {{first_name}}")

	w := do(t, h, http.MethodPost, "/campaigns/"+c.ID+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res service.SendCampaignResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, model.CampaignCompleted, res.Status)
	require.NotNil(t, res.Result)
	assert.Equal(t, 3, res.Result.Total)
	assert.Equal(t, 2, res.Result.Sent)
	assert.Equal(t, 1, res.Result.Failed)

	w = do(t, h, http.MethodGet, "/campaigns/"+c.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details service.CampaignDetails
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &details))
	assert.Equal(t, map[string]int{"total": 3, "sent": 2, "failed": 1}, details.Stats)

	w = do(t, h, http.MethodGet, "/campaigns/"+c.ID+"/messages?page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, 3, env.Pagination["total_count"])
	var msgs []model.OutboundMessage
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	assert.Len(t, msgs, 2)
}

func TestSendCampaignAsyncHandler(t *testing.T) {
	q := &capturingQueue{}
	h := campaignRouter(repository.NewMemoryStore(), q)
	c := createCampaign(t, h, "Promo", "Hi")

	w := do(t, h, http.MethodPost, "/campaigns/"+c.ID+"/send", map[string]any{"async": true, "tags": []string{"vip"}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var res service.SendCampaignResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.True(t, res.Queued)
	assert.Equal(t, "queued", res.Status)
	assert.Len(t, q.jobs, 1)
}

func TestUpdateAndDeleteCampaignHandler(t *testing.T) {
	h := campaignRouter(repository.NewMemoryStore(), nil)
	c := createCampaign(t, h, "Promo", "Hi")

	w := do(t, h, http.MethodPatch, "/campaigns/"+c.ID, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Campaign
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "Hi", got.Message)

	w = do(t, h, http.MethodPatch, "/campaigns/"+c.ID, map[string]any{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/campaigns/"+c.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/campaigns/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

const previewContact = "6b0f2f52-8f2e-4d7a-9b1e-0c4f7a2d1e01"

func TestPreviewCampaignHandler(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Contacts().Create(context.Background(), &model.Contact{
		ID: previewContact, UserID: testUser, Name: "Ana Lima", Phone: "31 99123-4567",
	}))
	h := campaignRouter(store, nil)
	c := createCampaign(t, h, "Promo", "Oi {{first_name}}")

	w := do(t, h, http.MethodPost, "/campaigns/"+c.ID+"/preview", map[string]any{"contact_id": previewContact})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p service.CampaignPreview
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &p))
	assert.Equal(t, "Oi Ana", p.RenderedMessage)
	assert.Equal(t, "5531991234567", p.Phone)

	w = do(t, h, http.MethodPost, "/campaigns/"+c.ID+"/preview", map[string]any{"contact_id": previewContact, "message": "Tchau {{name}}"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &p))
	assert.Equal(t, "Tchau Ana Lima", p.RenderedMessage)

	w = do(t, h, http.MethodPost, "/campaigns/"+c.ID+"/preview", map[string]any{"contact_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/campaigns/abc/preview", map[string]any{"contact_id": previewContact})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// unsavedStatus accepts the dispatch claim but never stores the outcome.
type unsavedStatus struct {
	repository.CampaignRepositoryInterface
}

func (unsavedStatus) Finish(context.Context, string, string, string, int, int, time.Time) error {
	return fmt.Errorf("db blip")
}

func TestSendCampaignHandler_StatusNotSaved(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	for i, phone := range []string{"11 90000-0001", "11 90000-0002", "11 90000-0003"} {
		require.NoError(t, store.Contacts().Create(ctx, &model.Contact{
			ID: fmt.Sprintf("c%d", i+1), UserID: testUser, Name: "Contact", Phone: phone,
		}))
	}
	svc := &service.CampaignService{
		CampaignRepo: store.Campaigns(),
		ContactRepo:  store.Contacts(),
		OutboundRepo: store.Messages(),
		Dispatcher: &service.BulkDispatcher{
			Campaigns: unsavedStatus{store.Campaigns()},
			Messages:  store.Messages(),
			Sender:    acceptAll{},
			Sleep:     func(time.Duration) {},
		},
	}
	c, err := svc.CreateCampaign(ctx, testUser, service.CampaignInput{Name: "Promo", Message: "Hi"})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(asUser(testUser))
	r.Post("/campaigns/{id}/send", (&controller.CampaignController{CampaignService: svc}).SendCampaign)

	w := do(t, r, http.MethodPost, "/campaigns/"+c.ID+"/send", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.Contains(t, env.Error.Message, "2 sent, 1 failed")
}
