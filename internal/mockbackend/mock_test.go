package mockbackend

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/meronoumer/moodreads/internal/domain"
)

func titles(books []domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestGenerateCyclesSamples(t *testing.T) {
	got := titles(Generate(7, nil))
	want := []string{
		"The Little Guide to Feeling Good (1)",
		"A Cozy Mystery (2)",
		"Space Adventures (3)",
		"Historical Tales (4)",
		"Poems for Quiet Nights (5)",
		"The Little Guide to Feeling Good (6)",
		"A Cozy Mystery (7)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFiltersByGenre(t *testing.T) {
	got := titles(Generate(2, []string{"cozy"}))
	want := []string{"A Cozy Mystery (1)", "A Cozy Mystery (2)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if n := len(Generate(3, []string{"horror"})); n != 0 {
		t.Errorf("unknown genre should give up empty, got %d", n)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/recommend", "application/json", strings.NewReader(`{"mood":"cozy","limit":3}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body domain.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Recommendations) != 3 {
		t.Errorf("expected 3 books, got %d", len(body.Recommendations))
	}
}

func TestRecommendDefaultsAndLimits(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/recommend", "application/json", strings.NewReader(`{"mood":"calm"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var body domain.RecommendResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if len(body.Recommendations) != defaultLimit {
		t.Errorf("expected default %d books, got %d", defaultLimit, len(body.Recommendations))
	}

	for _, payload := range []string{`{"mood":"calm","limit":0}`, `{"mood":"calm","limit":51}`, `{"limit":3}`, `{"mood":"","limit":3}`, `not json`} {
		resp, err := http.Post(srv.URL+"/recommend", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", payload, resp.StatusCode)
		}
	}
}
