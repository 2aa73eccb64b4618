package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/service"
)

// fakeJobSearchRepo is an in-memory stand-in for data.JobSearchRepo.
type fakeJobSearchRepo struct {
	searches map[string]*model.JobSearch
	nextID   int
}

func newFakeJobSearchRepo() *fakeJobSearchRepo {
	return &fakeJobSearchRepo{searches: make(map[string]*model.JobSearch), nextID: 1}
}

func (f *fakeJobSearchRepo) Create(_ context.Context, req *model.CreateJobSearchRequest) (*model.JobSearch, error) {
	js := &model.JobSearch{
		ID:               "js-" + string(rune('0'+f.nextID)),
		UserID:           req.UserID,
		Name:             req.Name,
		SearchParams:     req.SearchParams,
		CoverLetter:      req.CoverLetter,
		FilterExpression: req.FilterExpression,
		IsActive:         true,
	}
	f.nextID++
	f.searches[js.ID] = js
	return js, nil
}

func (f *fakeJobSearchRepo) GetByID(_ context.Context, id string) (*model.JobSearch, error) {
	js, ok := f.searches[id]
	if !ok {
		return nil, data.ErrJobSearchNotFound
	}
	return js, nil
}

func (f *fakeJobSearchRepo) ListByUser(_ context.Context, userID string) ([]*model.JobSearch, error) {
	var out []*model.JobSearch
	for _, js := range f.searches {
		if js.UserID == userID {
			out = append(out, js)
		}
	}
	return out, nil
}

func (f *fakeJobSearchRepo) SetActive(_ context.Context, id string, active bool) (*model.JobSearch, error) {
	js, ok := f.searches[id]
	if !ok {
		return nil, data.ErrJobSearchNotFound
	}
	js.IsActive = active
	return js, nil
}

func (f *fakeJobSearchRepo) DistinctActiveUserIDs(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, js := range f.searches {
		if js.IsActive && !seen[js.UserID] {
			seen[js.UserID] = true
			out = append(out, js.UserID)
		}
	}
	return out, nil
}

func (f *fakeJobSearchRepo) ListActiveByUser(_ context.Context, userID string) ([]*model.JobSearch, error) {
	var out []*model.JobSearch
	for _, js := range f.searches {
		if js.UserID == userID && js.IsActive {
			out = append(out, js)
		}
	}
	return out, nil
}

func newJobSearchHandlers() (*JobSearchHandlers, *fakeJobSearchRepo) {
	repo := newFakeJobSearchRepo()
	svc := service.NewJobSearchService(service.JobSearchServiceOptions{
		Repo:   repo,
		Filter: service.NewVacancyFilter(),
	})
	return &JobSearchHandlers{Svc: svc}, repo
}

func TestCreateJobSearch_Success(t *testing.T) {
	h, _ := newJobSearchHandlers()

	body := model.CreateJobSearchRequest{
		UserID:       "user-1",
		Name:         "golang remote",
		SearchParams: model.VacancySearchParams{Text: "golang", Area: "1"},
	}
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, "/api/job-searches", bytes.NewReader(b))
	w := httptest.NewRecorder()

	h.Create(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got model.JobSearch
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "golang remote", got.Name)
	assert.True(t, got.IsActive)
}

func TestCreateJobSearch_InvalidJSON(t *testing.T) {
	h, _ := newJobSearchHandlers()

	r := httptest.NewRequest(http.MethodPost, "/api/job-searches", bytes.NewBufferString("{bad"))
	w := httptest.NewRecorder()

	h.Create(w, r)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestCreateJobSearch_BadFilterExpression(t *testing.T) {
	h, _ := newJobSearchHandlers()

	bad := "salary.from >"
	body := model.CreateJobSearchRequest{
		UserID:           "user-1",
		Name:             "broken filter",
		SearchParams:     model.VacancySearchParams{Text: "golang"},
		FilterExpression: &bad,
	}
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, "/api/job-searches", bytes.NewReader(b))
	w := httptest.NewRecorder()

	h.Create(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Equal(t, "filter_expression", errBody["field"])
}

func TestGetJobSearch_NotFound(t *testing.T) {
	h, _ := newJobSearchHandlers()

	r := httptest.NewRequest(http.MethodGet, "/api/job-searches/nope", nil)
	r.SetPathValue("id", "nope")
	w := httptest.NewRecorder()

	h.Get(w, r)

	require.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestDeactivateJobSearch(t *testing.T) {
	h, repo := newJobSearchHandlers()
	js, err := repo.Create(context.Background(), &model.CreateJobSearchRequest{
		UserID:       "user-1",
		Name:         "to pause",
		SearchParams: model.VacancySearchParams{Text: "golang"},
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/job-searches/"+js.ID+"/deactivate", nil)
	r.SetPathValue("id", js.ID)
	w := httptest.NewRecorder()

	h.Deactivate(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.JobSearch
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.False(t, got.IsActive)
}

func TestListJobSearches_RequiresUserID(t *testing.T) {
	h, _ := newJobSearchHandlers()

	r := httptest.NewRequest(http.MethodGet, "/api/job-searches", nil)
	w := httptest.NewRecorder()

	h.List(w, r)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

// fakeSettingsStore keeps setting rows in a map.
type fakeSettingsStore struct {
	rows map[string]string
}

func (f *fakeSettingsStore) Get(_ context.Context, key string) (*model.Setting, error) {
	v, ok := f.rows[key]
	if !ok {
		return nil, data.ErrSettingNotFound
	}
	return &model.Setting{Key: key, Value: v}, nil
}

func (f *fakeSettingsStore) Upsert(_ context.Context, p data.UpsertParams) error {
	if f.rows == nil {
		f.rows = make(map[string]string)
	}
	f.rows[p.Key] = p.Value
	return nil
}

func (f *fakeSettingsStore) All(_ context.Context) ([]*model.Setting, error) {
	out := make([]*model.Setting, 0, len(f.rows))
	for k, v := range f.rows {
		out = append(out, &model.Setting{Key: k, Value: v})
	}
	return out, nil
}

func TestUpdateSetting(t *testing.T) {
	store := &fakeSettingsStore{}
	h := &SettingsHandlers{Svc: service.NewSettingsService(service.SettingsServiceOptions{Repo: store})}

	b, _ := json.Marshal(map[string]string{"value": "15"})
	r := httptest.NewRequest(http.MethodPut, "/api/settings/"+model.SettingPollIntervalMinutes, bytes.NewReader(b))
	r.SetPathValue("key", model.SettingPollIntervalMinutes)
	w := httptest.NewRecorder()

	h.Update(w, r)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "15", store.rows[model.SettingPollIntervalMinutes])
}

func TestUpdateSetting_UnknownKey(t *testing.T) {
	store := &fakeSettingsStore{}
	h := &SettingsHandlers{Svc: service.NewSettingsService(service.SettingsServiceOptions{Repo: store})}

	b, _ := json.Marshal(map[string]string{"value": "15"})
	r := httptest.NewRequest(http.MethodPut, "/api/settings/bogus", bytes.NewReader(b))
	r.SetPathValue("key", "bogus")
	w := httptest.NewRecorder()

	h.Update(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Equal(t, "key", errBody["field"])
}

// fakeCredentialRepo stores the most recent credential per user.
type fakeCredentialRepo struct {
	latest map[string]*model.Credential
}

func (f *fakeCredentialRepo) Create(_ context.Context, req *model.CreateCredentialRequest) (*model.Credential, error) {
	if f.latest == nil {
		f.latest = make(map[string]*model.Credential)
	}
	cred := &model.Credential{
		ID:          "cred-" + req.UserID,
		UserID:      req.UserID,
		AccessToken: req.AccessToken,
		ResumeID:    req.ResumeID,
		ExpiresAt:   req.ExpiresAt,
	}
	f.latest[req.UserID] = cred
	return cred, nil
}

func (f *fakeCredentialRepo) LatestByUser(_ context.Context, userID string) (*model.Credential, error) {
	cred, ok := f.latest[userID]
	if !ok {
		return nil, data.ErrCredentialNotFound
	}
	return cred, nil
}

func TestSaveCredential(t *testing.T) {
	repo := &fakeCredentialRepo{}
	h := &CredentialHandlers{Svc: service.NewCredentialService(service.CredentialServiceOptions{Repo: repo})}

	body := model.CreateCredentialRequest{UserID: "user-1", AccessToken: "token-abc"}
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, "/api/credentials", bytes.NewReader(b))
	w := httptest.NewRecorder()

	h.Save(w, r)

	require.Equal(t, http.StatusCreated, w.Result().StatusCode)
	require.Contains(t, repo.latest, "user-1")
	assert.Equal(t, "token-abc", repo.latest["user-1"].AccessToken)
}

func TestSaveCredential_MissingToken(t *testing.T) {
	h := &CredentialHandlers{Svc: service.NewCredentialService(service.CredentialServiceOptions{Repo: &fakeCredentialRepo{}})}

	b, _ := json.Marshal(model.CreateCredentialRequest{UserID: "user-1"})
	r := httptest.NewRequest(http.MethodPost, "/api/credentials", bytes.NewReader(b))
	w := httptest.NewRecorder()

	h.Save(w, r)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestListApplications_RequiresUserID(t *testing.T) {
	h := &ApplicationHandlers{}

	r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	w := httptest.NewRecorder()

	h.List(w, r)

	require.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}
