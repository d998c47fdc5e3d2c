package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/s/courseMarket/internal/enrollment"
	"github.com/s/courseMarket/internal/handlers"
	"github.com/s/courseMarket/internal/marketplace"
	"github.com/s/courseMarket/internal/models"
	"github.com/s/courseMarket/internal/storage"
)

type testEnv struct {
	market *fakeMarket
	auth   *fakeAuth
	kv     *storage.MemoryKV
	srv    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithAuth(t, true)
}

func newTestEnvWithAuth(t *testing.T, googleEnabled bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := &testEnv{
		market: newFakeMarket(),
		auth:   &fakeAuth{},
		kv:     storage.NewMemoryKV(),
	}

	upstream := httptest.NewServer(e.market.handler())
	t.Cleanup(upstream.Close)

	client := marketplace.New(upstream.URL, 5*time.Second, 0, logger)
	cache := enrollment.NewLocalCache(e.kv, logger)
	views := enrollment.NewViews(64, time.Minute)
	reconciler := enrollment.NewReconciler(client, cache, views, models.NewValidator(), logger)

	var authenticator handlers.Authenticator
	if googleEnabled {
		authenticator = e.auth
	}
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	h := handlers.NewHandler(client, reconciler, store, authenticator, logger)

	e.srv = httptest.NewServer(NewRouter(h))
	t.Cleanup(e.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	e.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return e
}

// call выполняет запрос и возвращает статус и разобранное JSON-тело.
func (e *testEnv) call(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := e.callRaw(t, method, path, body)
	out := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (e *testEnv) callRaw(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// login проходит полный цикл входа через Google с фейковым провайдером.
func (e *testEnv) login(t *testing.T, email string) {
	t.Helper()
	e.auth.set(models.Identity{Email: email, DisplayName: "Test User"})

	resp, err := e.client.Get(e.srv.URL + "/auth/google/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	resp, err = e.client.Get(e.srv.URL + "/auth/google/callback?code=abc&state=" + url.QueryEscape(state))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func (e *testEnv) cached(t *testing.T, email string) []string {
	t.Helper()
	raw, err := e.kv.Get(context.Background(), "enrollments:"+email)
	if err != nil {
		return nil
	}
	var ids []string
	require.NoError(t, json.Unmarshal(raw, &ids))
	return ids
}

func (e *testEnv) seedCache(t *testing.T, email string, ids ...string) {
	t.Helper()
	raw, err := json.Marshal(ids)
	require.NoError(t, err)
	require.NoError(t, e.kv.Set(context.Background(), "enrollments:"+email, raw))
}

func courseIDs(t *testing.T, v any) []string {
	t.Helper()
	items, ok := v.([]any)
	require.True(t, ok, "expected a JSON array, got %T", v)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		m := it.(map[string]any)
		if id, ok := m["courseId"].(string); ok {
			ids = append(ids, id)
			continue
		}
		ids = append(ids, m["id"].(string))
	}
	return ids
}
