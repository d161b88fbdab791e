package game

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/playperu/treasurehunt/internal/thapi"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type call struct {
	Endpoint string
	Query    url.Values
}

// fakeUpstream is a scripted treasure-hunt API. Each endpoint answers with
// the next queued body, repeating the last one once the queue runs dry.
// A body of "HTTP <anything>" produces a 503.
type fakeUpstream struct {
	mu      sync.Mutex
	replies map[string][]string
	last    map[string]string
	calls   []call
	srv     *httptest.Server
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{replies: make(map[string][]string), last: make(map[string]string)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/api/")

	f.mu.Lock()
	f.calls = append(f.calls, call{Endpoint: endpoint, Query: r.URL.Query()})
	body, ok := f.last[endpoint]
	if queue := f.replies[endpoint]; len(queue) > 0 {
		body, ok = queue[0], true
		f.replies[endpoint] = queue[1:]
		f.last[endpoint] = body
	}
	f.mu.Unlock()

	if !ok {
		http.Error(w, "no reply scripted", http.StatusNotFound)
		return
	}

	if strings.HasPrefix(body, "HTTP ") {
		http.Error(w, "upstream failure", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (f *fakeUpstream) reply(endpoint string, bodies ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range bodies {
		var s string
		switch v := b.(type) {
		case string:
			s = v
		default:
			data, _ := json.Marshal(v)
			s = string(data)
		}
		f.replies[endpoint] = append(f.replies[endpoint], s)
	}
}

func (f *fakeUpstream) callsTo(endpoint string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeUpstream) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeUpstream) client(t *testing.T) *thapi.Client {
	t.Helper()
	c, err := thapi.NewClient(f.srv.URL+"/api", f.srv.Client(), "the-game-hunt")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

type message struct {
	Text    string
	IsError bool
}

// recordingSurface captures everything the controller asks it to show.
type recordingSurface struct {
	mu          sync.Mutex
	hunts       []treasurehunt.Hunt
	question    *treasurehunt.Question
	input       InputSpec
	shown       int
	score       *float64
	leaderboard []treasurehunt.LeaderboardEntry
	messages    []message
}

func (s *recordingSurface) Notify(text string, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message{Text: text, IsError: isError})
}

func (s *recordingSurface) ShowHunts(h []treasurehunt.Hunt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hunts = h
}

func (s *recordingSurface) ShowQuestion(q treasurehunt.Question, in InputSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question, s.input = &q, in
	s.shown++
}

func (s *recordingSurface) ClearQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = nil
}

func (s *recordingSurface) ShowScore(score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = &score
}

func (s *recordingSurface) ShowLeaderboard(e []treasurehunt.LeaderboardEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = e
}

func (s *recordingSurface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question, s.score, s.leaderboard = nil, nil, nil
}

func (s *recordingSurface) lastMessage() message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return message{}
	}
	return s.messages[len(s.messages)-1]
}

func (s *recordingSurface) hasMessage(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
