package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/lethe-board/lethe/internal/board"
	"github.com/lethe-board/lethe/internal/command"
	"github.com/lethe-board/lethe/internal/config"
	"github.com/lethe-board/lethe/internal/session"
	"github.com/lethe-board/lethe/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type nilProber struct{}

func (nilProber) Probe(ctx context.Context, uri string) *string { return nil }

type fakeSearcher struct {
	url string
	err error
}

func (f *fakeSearcher) RandomImage(ctx context.Context, tags []string) (string, error) {
	return f.url, f.err
}

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), cfg.Capacity)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	registry := command.NewRegistry(command.Builtin(cfg, &fakeSearcher{})...)
	pipeline := board.New(cfg, st, registry, nilProber{}, nil)
	srv := httptest.NewServer(New(cfg, pipeline, session.NewManager(), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// noRedirectClient keeps 303s observable and carries the session cookie.
func noRedirectClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	c := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	t.Cleanup(c.CloseIdleConnections)
	return c
}

func postForm(t *testing.T, c *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(url, form)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestListingPage(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp, err := c.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	page := body(t, resp)
	if !strings.Contains(page, cfg.Placeholder) {
		t.Errorf("expected placeholder %q in page", cfg.Placeholder)
	}
}

func TestSubmitAndList(t *testing.T) {
	srv := newTestServer(t, config.Default())
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"hello void"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	listing, err := c.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(body(t, listing), "hello void") {
		t.Error("expected submitted memory on the listing page")
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"   "}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), cfg.Messages.TooShort) {
		t.Error("expected the configured too-short message")
	}
}

func TestSlashGuardOverHTTP(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"/bogus hello"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), cfg.Messages.InvalidSlash) {
		t.Error("expected the invalid-slash message")
	}
}

func TestForgetRequiresLogin(t *testing.T) {
	srv := newTestServer(t, config.Default())
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/forget", url.Values{"id": {"1"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestForgetBadID(t *testing.T) {
	srv := newTestServer(t, config.Default())
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/forget", url.Values{"id": {"not-a-number"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginThenForget(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"doomed memory"}})
	resp.Body.Close()

	// Wrong secret leaves the session unprivileged.
	resp = postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"/login wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), cfg.Messages.LoginFail) {
		t.Error("expected the login-fail message")
	}

	resp = postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"/login " + cfg.Secret}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after login, got %d", resp.StatusCode)
	}

	// The listing shows the greeting once.
	listing, _ := c.Get(srv.URL + "/")
	if !strings.Contains(body(t, listing), cfg.Messages.Greet) {
		t.Error("expected greet flash after login")
	}

	resp = postForm(t, c, srv.URL+"/forget", url.Values{"id": {"1"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after privileged forget, got %d", resp.StatusCode)
	}

	listing, _ = c.Get(srv.URL + "/")
	if strings.Contains(body(t, listing), "doomed memory") {
		t.Error("expected the memory to be forgotten")
	}
}

func TestLogout(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp := postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"/login " + cfg.Secret}})
	resp.Body.Close()
	resp = postForm(t, c, srv.URL+"/new_memory", url.Values{"text": {"/logout"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after logout, got %d", resp.StatusCode)
	}

	resp = postForm(t, c, srv.URL+"/forget", url.Values{"id": {"1"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRandomImage(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.RandomImageDir = dir
	if err := os.WriteFile(filepath.Join(dir, "bg.png"), []byte("\x89PNG\r\n\x1a\nfake"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp, err := c.Get(srv.URL + "/random_image")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image/png") {
		t.Errorf("expected png content type, got %q", ct)
	}
}

func TestRandomImageMissingDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.RandomImageDir = filepath.Join(t.TempDir(), "nope")
	srv := newTestServer(t, cfg)
	c := noRedirectClient(t)

	resp, err := c.Get(srv.URL + "/random_image")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
