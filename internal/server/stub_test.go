package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// stubAPI is an in-memory treasure-hunt API. Questions are served in order;
// once they run out the hunt reports completion.
type stubAPI struct {
	mu sync.Mutex

	hunts     []treasurehunt.Hunt
	huntsErr  error
	session   string
	startErr  error
	questions []treasurehunt.Question
	next      int
	answerErr error
	score     float64
	board     []treasurehunt.LeaderboardEntry

	starts    int
	answers   []string
	locations [][2]float64
}

func (s *stubAPI) List(context.Context) ([]treasurehunt.Hunt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hunts, s.huntsErr
}

func (s *stubAPI) Start(_ context.Context, player, huntID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	s.next = 0
	return s.session, s.startErr
}

func (s *stubAPI) Question(context.Context, string) (treasurehunt.QuestionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.questions) {
		return treasurehunt.QuestionResult{Completed: true}, nil
	}
	return treasurehunt.QuestionResult{Question: s.questions[s.next]}, nil
}

func (s *stubAPI) Answer(_ context.Context, _, answer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answerErr != nil {
		return false, s.answerErr
	}
	s.answers = append(s.answers, answer)
	s.next++
	return s.next >= len(s.questions), nil
}

func (s *stubAPI) Skip(context.Context, string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next >= len(s.questions), nil
}

func (s *stubAPI) Score(context.Context, string) (float64, error) {
	return s.score, nil
}

func (s *stubAPI) Leaderboard(context.Context, string, int) ([]treasurehunt.LeaderboardEntry, error) {
	return s.board, nil
}

func (s *stubAPI) Location(_ context.Context, _ string, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append(s.locations, [2]float64{lat, lon})
	return nil
}

// memResults is an in-memory ResultStore.
type memResults struct {
	mu      sync.Mutex
	results []treasurehunt.Result
}

func (m *memResults) RecordResult(_ context.Context, res treasurehunt.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

func (m *memResults) ListResults(_ context.Context, player string, limit int) ([]treasurehunt.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []treasurehunt.Result
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		if m.results[i].Player == player {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestServer(t *testing.T, api *stubAPI, results ResultStore) *httptest.Server {
	t.Helper()
	srv := New("", discardLogger(), Deps{
		API:              api,
		Hunts:            api,
		Results:          results,
		LeaderboardLimit: 10,
	}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// browser is an HTTP client with its own cookie jar, standing in for one
// player's browser.
type browser struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func newBrowser(t *testing.T, ts *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &browser{t: t, base: ts.URL, hc: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path string, body any) (int, []byte) {
	b.t.Helper()
	var r io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			b.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, b.base+path, r)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.hc.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

// play sends a gameplay request and decodes the view it returns.
func (b *browser) play(method, path string, body any) (int, PlayResponse) {
	b.t.Helper()
	status, data := b.do(method, path, body)
	var resp PlayResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		b.t.Fatalf("%s %s: decode %q: %v", method, path, data, err)
	}
	return status, resp
}

var errBoom = errors.New("boom")
