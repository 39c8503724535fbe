package router

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/meronoumer/moodreads/internal/handler"
	"github.com/meronoumer/moodreads/internal/mockbackend"
	"github.com/meronoumer/moodreads/internal/model"
	"github.com/meronoumer/moodreads/internal/service"
	"github.com/meronoumer/moodreads/internal/view"
)

func newApp(t *testing.T, backendURL string) (*httptest.Server, *http.Client) {
	t.Helper()

	client, err := model.NewClient([]string{backendURL}, "", 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := service.NewService(client, nil)
	sessions := handler.NewSessions(func() *view.View { return view.New(svc) }, time.Hour)

	srv := httptest.NewServer(Setup(handler.NewHandler(svc, sessions), Options{}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return srv, &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func postForm(t *testing.T, c *http.Client, u string, vals url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(u, vals)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func waitPhase(t *testing.T, c *http.Client, base, phase string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, body := get(t, c, base+"/api/state")
		var st struct {
			State struct {
				Phase string `json:"phase"`
			} `json:"state"`
			SubmitDisabled bool `json:"submit_disabled"`
		}
		if err := json.Unmarshal([]byte(body), &st); err != nil {
			t.Fatalf("decode state %q: %v", body, err)
		}
		if st.State.Phase == phase && !st.SubmitDisabled {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for phase %s, last %s", phase, body)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubmitFlowRendersCards(t *testing.T) {
	backend := httptest.NewServer(mockbackend.Handler())
	defer backend.Close()
	srv, c := newApp(t, backend.URL+"/recommend")

	status, body := get(t, c, srv.URL+"/")
	if status != http.StatusOK || !strings.Contains(body, `data-role="empty"`) {
		t.Fatalf("expected idle page, got %d", status)
	}

	status, _ = postForm(t, c, srv.URL+"/submit", url.Values{"custom": {"  cozy  "}, "limit": {"3"}})
	if status != http.StatusOK {
		t.Fatalf("expected redirect to page, got %d", status)
	}

	waitPhase(t, c, srv.URL, "success")

	_, body = get(t, c, srv.URL+"/")
	if n := strings.Count(body, `data-role="card"`); n != 3 {
		t.Errorf("expected 3 cards, got %d", n)
	}
	if !strings.Contains(body, "The Little Guide to Feeling Good (1)") {
		t.Error("expected the first mock book")
	}
}

func TestSubmitBlankMoodIsRejected(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()
	srv, c := newApp(t, backend.URL)

	status, body := postForm(t, c, srv.URL+"/submit", url.Values{"custom": {"   "}, "limit": {"6"}})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", status)
	}
	if !strings.Contains(body, `data-role="validation"`) {
		t.Error("expected validation message")
	}

	status, _ = postForm(t, c, srv.URL+"/submit", url.Values{"preset": {"Cozy"}, "limit": {"7"}})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for bad limit, got %d", status)
	}

	if hits.Load() != 0 {
		t.Errorf("expected no backend requests, got %d", hits.Load())
	}
}

func TestPendingSubmissionDisablesForm(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, `{"recommendations":[{"title":"A"}]}`)
	}))
	defer backend.Close()
	srv, c := newApp(t, backend.URL)
	defer close(release)

	status, body := postForm(t, c, srv.URL+"/submit", url.Values{"preset": {"Calm"}, "limit": {"12"}})
	if status != http.StatusOK {
		t.Fatalf("expected page after redirect, got %d", status)
	}
	if n := strings.Count(body, `data-role="placeholder"`); n != 12 {
		t.Errorf("expected 12 placeholders, got %d", n)
	}
	if !strings.Contains(body, `data-role="submit" disabled`) {
		t.Error("expected disabled submit control")
	}

	status, _ = postForm(t, c, srv.URL+"/submit", url.Values{"preset": {"Calm"}, "limit": {"12"}})
	if status != http.StatusConflict {
		t.Errorf("expected 409 while in flight, got %d", status)
	}
}

func TestQuickSubmit(t *testing.T) {
	backend := httptest.NewServer(mockbackend.Handler())
	defer backend.Close()
	srv, c := newApp(t, backend.URL+"/recommend")

	status, _ := postForm(t, c, srv.URL+"/quick", url.Values{"mood": {"nostalgic for summer"}})
	if status != http.StatusOK {
		t.Fatalf("expected page after redirect, got %d", status)
	}
	waitPhase(t, c, srv.URL, "success")

	_, body := get(t, c, srv.URL+"/")
	if n := strings.Count(body, `data-role="card"`); n != 6 {
		t.Errorf("expected default 6 cards, got %d", n)
	}

	status, _ = postForm(t, c, srv.URL+"/quick", url.Values{"mood": {"  "}})
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for blank quick mood, got %d", status)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	backend := httptest.NewServer(mockbackend.Handler())
	defer backend.Close()
	srv, c1 := newApp(t, backend.URL+"/recommend")

	jar, _ := cookiejar.New(nil)
	c2 := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	postForm(t, c1, srv.URL+"/submit", url.Values{"preset": {"Cozy"}, "limit": {"3"}})
	waitPhase(t, c1, srv.URL, "success")

	_, body := get(t, c2, srv.URL+"/")
	if !strings.Contains(body, `data-role="empty"`) {
		t.Error("a new browser must start idle")
	}
}

func TestAPIRecommend(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		request    string
		wantStatus int
		wantCode   string
	}{
		{"success", http.StatusOK, `{"recommendations":[{"title":"A"},{"title":"B"}]}`, `{"mood":"calm","limit":3}`, http.StatusOK, ""},
		{"empty", http.StatusOK, `{"recommendations":[]}`, `{"mood":"calm","limit":3}`, http.StatusNotFound, "no_results"},
		{"backend error", http.StatusInternalServerError, `{}`, `{"mood":"calm","limit":3}`, http.StatusBadGateway, "backend_unavailable"},
		{"blank mood", http.StatusOK, `{}`, `{"mood":"  ","limit":3}`, http.StatusBadRequest, "invalid_parameter"},
		{"bad limit", http.StatusOK, `{}`, `{"mood":"calm","limit":4}`, http.StatusBadRequest, "invalid_parameter"},
		{"not json", http.StatusOK, `{}`, `mood=calm`, http.StatusBadRequest, "invalid_body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer backend.Close()
			srv, c := newApp(t, backend.URL)

			resp, err := c.Post(srv.URL+"/api/recommend", "application/json", strings.NewReader(tt.request))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantCode == "" {
				var got handler.RecommendationResponse
				if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if got.Metadata.TotalCount != 2 || got.Recommendations[0].Title != "A" {
					t.Errorf("unexpected response %+v", got)
				}
				return
			}
			var got handler.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Error != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, got.Error)
			}
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	srv, c := newApp(t, "http://127.0.0.1:1/recommend")

	for _, path := range []string{"/health", "/metrics", "/static/app.css"} {
		if status, _ := get(t, c, srv.URL+path); status != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, status)
		}
	}
}

func TestSubmitRejectionShowsMessage(t *testing.T) {
	var hits atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer backend.Close()
	srv, c := newApp(t, backend.URL)

	tests := []struct {
		name    string
		vals    url.Values
		message string
	}{
		{"limit outside the set", url.Values{"custom": {"calm"}, "limit": {"5"}}, "3, 6, 9 or 12"},
		{"unknown preset", url.Values{"preset": {"Angry"}, "limit": {"6"}}, "Angry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postForm(t, c, srv.URL+"/submit", tt.vals)
			if status != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", status)
			}
			if !strings.Contains(body, `data-role="validation"`) || !strings.Contains(body, tt.message) {
				t.Errorf("expected validation message mentioning %q", tt.message)
			}
		})
	}

	if hits.Load() != 0 {
		t.Errorf("expected no backend requests, got %d", hits.Load())
	}
}

func TestPageViewDoesNotStartSession(t *testing.T) {
	backend := httptest.NewServer(mockbackend.Handler())
	defer backend.Close()

	client, err := model.NewClient([]string{backend.URL + "/recommend"}, "", 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := service.NewService(client, nil)
	sessions := handler.NewSessions(func() *view.View { return view.New(svc) }, time.Hour)
	srv := httptest.NewServer(Setup(handler.NewHandler(svc, sessions), Options{}))
	defer srv.Close()

	for _, path := range []string{"/", "/api/state"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if len(resp.Cookies()) != 0 {
			t.Errorf("%s: unexpected session cookie", path)
		}
	}
	if sessions.Len() != 0 {
		t.Errorf("expected no sessions after page views, got %d", sessions.Len())
	}
}

func TestQuickSubmitBlocksFormSubmit(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, `{"recommendations":[{"title":"A"}]}`)
	}))
	defer backend.Close()
	srv, c := newApp(t, backend.URL)
	defer close(release)

	status, body := postForm(t, c, srv.URL+"/quick", url.Values{"mood": {"cozy rainy afternoon"}})
	if status != http.StatusOK {
		t.Fatalf("expected page after redirect, got %d", status)
	}
	if !strings.Contains(body, `data-role="submit" disabled`) {
		t.Error("expected disabled submit control while the quick submit is pending")
	}

	status, _ = postForm(t, c, srv.URL+"/submit", url.Values{"preset": {"Calm"}, "limit": {"3"}})
	if status != http.StatusConflict {
		t.Errorf("expected 409 while in flight, got %d", status)
	}
}

func TestClearCache(t *testing.T) {
	srv, c := newApp(t, "http://127.0.0.1:1/recommend")

	for path, want := range map[string]int{
		"/api/cache/calm":        http.StatusNoContent,
		"/api/cache/rainy%20day": http.StatusNoContent,
		"/api/cache/%20%20":      http.StatusBadRequest,
	} {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+path, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("DELETE %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}
