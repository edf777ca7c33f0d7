package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/store"
)

type memStore struct {
	saved   []model.Lead
	saveErr error
}

func (m *memStore) SaveLeads(ctx context.Context, leads []model.Lead) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, leads...)
	return nil
}

func (m *memStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	for i := range m.saved {
		if m.saved[i].ID == id {
			return &m.saved[i], nil
		}
	}
	return nil, eris.Errorf("lead not found: %s", id)
}

func (m *memStore) ListLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error) {
	return m.saved, nil
}

func (m *memStore) Migrate(ctx context.Context) error { return nil }
func (m *memStore) Close() error                      { return nil }

type stubTransform struct {
	called int
}

func (s *stubTransform) Validate(ctx context.Context, leads []model.Lead) []model.Lead {
	s.called++
	for i := range leads {
		valid := true
		leads[i].IsValidPerson = &valid
	}
	return leads
}

func (s *stubTransform) Enrich(ctx context.Context, leads []model.Lead) []model.Lead {
	s.called++
	for i := range leads {
		leads[i].EnrichState = model.EnrichStateDone
		leads[i].Enriched = true
	}
	return leads
}

func (s *stubTransform) Upgrade(ctx context.Context, leads []model.Lead) []model.Lead {
	s.called++
	return leads
}

func newTestEnv() (*pipelineEnv, *memStore, *stubTransform) {
	st := &memStore{}
	stub := &stubTransform{}
	return &pipelineEnv{Store: st, Validator: stub, Enricher: stub, Upgrader: stub}, st, stub
}

func TestServe_Health(t *testing.T) {
	env, _, _ := newTestEnv()
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServe_ValidateBatch(t *testing.T) {
	env, st, stub := newTestEnv()
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	body := `[{"id":"1","name":"Jane Doe","title":"CTO","company":"Acme"},
	          {"id":"2","name":"Jane Doe","title":"CTO","company":"Acme"}]`
	resp, err := http.Post(srv.URL+"/leads/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stub.called)
	// Identical email+linkedin sentinel keys collapse before validation.
	assert.Len(t, st.saved, 1)
	require.NotNil(t, st.saved[0].IsValidPerson)
}

func TestServe_EnrichBatch(t *testing.T) {
	env, st, _ := newTestEnv()
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/leads/enrich", "application/json",
		strings.NewReader(`[{"id":"1","name":"Jane Doe"}]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, st.saved, 1)
	assert.Equal(t, model.EnrichStateDone, st.saved[0].State())
}

func TestServe_BadBody(t *testing.T) {
	env, _, stub := newTestEnv()
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/leads/upgrade", "application/json",
		strings.NewReader(`{"not":"an array"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, stub.called)
}

func TestServe_EmptyBatch(t *testing.T) {
	env, _, _ := newTestEnv()
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/leads/validate", "application/json", strings.NewReader(`[]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_PersistFailure(t *testing.T) {
	env, st, _ := newTestEnv()
	st.saveErr = eris.New("disk full")
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/leads/enrich", "application/json",
		strings.NewReader(`[{"id":"1","name":"Jane Doe"}]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
