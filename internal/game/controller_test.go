package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playperu/treasurehunt/internal/thapi"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type listerFunc func(ctx context.Context) ([]treasurehunt.Hunt, error)

func (f listerFunc) List(ctx context.Context) ([]treasurehunt.Hunt, error) { return f(ctx) }

type recorderStub struct {
	mu      sync.Mutex
	results []treasurehunt.Result
}

func (r *recorderStub) RecordResult(_ context.Context, res treasurehunt.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

type countingObserver struct{ started, completed, failed int }

func (o *countingObserver) HuntStarted()   { o.started++ }
func (o *countingObserver) HuntCompleted() { o.completed++ }
func (o *countingObserver) HuntFailed()    { o.failed++ }

type fixture struct {
	ctrl     *Controller
	up       *fakeUpstream
	surface  *recordingSurface
	recorder *recorderStub
	observer *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	up := newFakeUpstream(t)
	api := up.client(t)
	surface := &recordingSurface{}
	recorder := &recorderStub{}
	observer := &countingObserver{}

	ctrl := NewController(api, listerFunc(api.ListHunts), surface, NewPresenter(discardLogger()), discardLogger(), Options{
		ClientID:         "client-1",
		LeaderboardLimit: 5,
		Recorder:         recorder,
		Observer:         observer,
	})
	return &fixture{ctrl: ctrl, up: up, surface: surface, recorder: recorder, observer: observer}
}

func questionBody(text, typ string, choices ...string) map[string]any {
	body := map[string]any{"status": "OK", "completed": false, "questionText": text, "questionType": typ}
	if len(choices) > 0 {
		body["possibleAnswers"] = choices
	}
	return body
}

const (
	okSession   = `{"status":"OK","session":"sess-1"}`
	okCompleted = `{"status":"OK","completed":true}`
	okContinue  = `{"status":"OK","completed":false}`
	okScore     = `{"status":"OK","score":120}`
	okBoard     = `{"status":"OK","leaderboard":[{"player":"ana","score":120},{"player":"bo","score":80}]}`
)

// started returns a fixture whose controller is awaiting an answer to q.
func started(t *testing.T, q map[string]any) *fixture {
	t.Helper()
	f := newFixture(t)
	f.up.reply("start", okSession)
	f.up.reply("question", q)
	if err := f.ctrl.Start(context.Background(), "ana", "hunt-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Fatalf("state after start = %s, want %s", got, StateAwaitingAnswer)
	}
	return f
}

func TestStartRequiresPlayerAndHunt(t *testing.T) {
	tests := []struct {
		name   string
		player string
		hunt   string
	}{
		{name: "empty player", player: "", hunt: "hunt-1"},
		{name: "blank player", player: "   ", hunt: "hunt-1"},
		{name: "no hunt", player: "ana", hunt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			err := f.ctrl.Start(context.Background(), tt.player, tt.hunt)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if n := f.up.totalCalls(); n != 0 {
				t.Errorf("upstream calls = %d, want 0", n)
			}
			if got := f.ctrl.State(); got != StateIdle {
				t.Errorf("state = %s, want idle", got)
			}
			if !f.surface.lastMessage().IsError {
				t.Error("expected an error notification")
			}
		})
	}
}

func TestStartDomainErrorStoresNoSession(t *testing.T) {
	f := newFixture(t)
	f.up.reply("start", `{"status":"ERROR","errorMessage":"Hunt not found"}`)

	err := f.ctrl.Start(context.Background(), "ana", "missing")

	var de *thapi.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if !f.surface.hasMessage("Hunt not found") {
		t.Errorf("messages = %+v, want one containing %q", f.surface.messages, "Hunt not found")
	}
	if _, ok := f.ctrl.Session(); ok {
		t.Error("session stored after failed start")
	}
	if got := f.ctrl.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
	if f.observer.failed != 1 {
		t.Errorf("failed count = %d, want 1", f.observer.failed)
	}
	if n := len(f.up.callsTo("question")); n != 0 {
		t.Errorf("question calls = %d, want 0", n)
	}
}

func TestStartNetworkErrorFails(t *testing.T) {
	f := newFixture(t)
	f.up.srv.Close()

	err := f.ctrl.Start(context.Background(), "ana", "hunt-1")

	var ne *thapi.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if got := f.ctrl.State(); got != StateFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestStartShowsFirstQuestion(t *testing.T) {
	f := started(t, questionBody("Which gate?", "MCQ", "North", "South"))

	session, ok := f.ctrl.Session()
	if !ok || session != "sess-1" {
		t.Fatalf("session = %q, %v", session, ok)
	}

	start := f.up.callsTo("start")
	if len(start) != 1 {
		t.Fatalf("start calls = %d, want 1", len(start))
	}
	if q := start[0].Query; q.Get("player") != "ana" || q.Get("treasure-hunt-id") != "hunt-1" || q.Get("app") != "the-game-hunt" {
		t.Errorf("start query = %v", q)
	}

	questions := f.up.callsTo("question")
	if len(questions) != 1 || questions[0].Query.Get("session") != "sess-1" {
		t.Fatalf("question calls = %+v", questions)
	}

	if f.surface.question == nil || f.surface.question.Text != "Which gate?" {
		t.Fatalf("surface question = %+v", f.surface.question)
	}
	if f.surface.input.Kind != InputChoice || len(f.surface.input.Options) != 2 {
		t.Errorf("surface input = %+v", f.surface.input)
	}
	if f.observer.started != 1 {
		t.Errorf("started count = %d, want 1", f.observer.started)
	}
}

func TestQuestionCompletedGoesStraightToResults(t *testing.T) {
	f := newFixture(t)
	f.up.reply("start", okSession)
	f.up.reply("question", okCompleted)
	f.up.reply("score", okScore)
	f.up.reply("leaderboard", okBoard)

	if err := f.ctrl.Start(context.Background(), "ana", "hunt-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if got := f.ctrl.State(); got != StateCompleted {
		t.Fatalf("state = %s, want completed", got)
	}
	if f.surface.shown != 0 || f.surface.question != nil {
		t.Errorf("question rendered on completion: shown=%d question=%+v", f.surface.shown, f.surface.question)
	}
	if snap := f.ctrl.Snapshot(); snap.Question != nil {
		t.Errorf("snapshot question = %+v, want nil", snap.Question)
	}
	if f.surface.score == nil || *f.surface.score != 120 {
		t.Errorf("score = %v, want 120", f.surface.score)
	}
	if len(f.surface.leaderboard) != 2 {
		t.Errorf("leaderboard = %+v", f.surface.leaderboard)
	}

	board := f.up.callsTo("leaderboard")
	if len(board) != 1 {
		t.Fatalf("leaderboard calls = %d, want 1", len(board))
	}
	if q := board[0].Query; q.Get("session") != "sess-1" || q.Get("sorted") != "true" || q.Get("limit") != "5" {
		t.Errorf("leaderboard query = %v", q)
	}
}

func TestAnswerNotCompletedFetchesNextQuestionOnce(t *testing.T) {
	f := newFixture(t)
	f.up.reply("start", okSession)
	f.up.reply("question",
		questionBody("How many steps?", "NUMERIC"),
		questionBody("Is it blue?", "BOOLEAN"),
	)
	f.up.reply("answer", okContinue)

	if err := f.ctrl.Start(context.Background(), "ana", "hunt-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	before := len(f.up.callsTo("question"))

	if err := f.ctrl.Answer(context.Background(), "42"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	answers := f.up.callsTo("answer")
	if len(answers) != 1 {
		t.Fatalf("answer calls = %d, want 1", len(answers))
	}
	if got := answers[0].Query.Get("answer"); got != "42" {
		t.Errorf("answer param = %q, want %q", got, "42")
	}
	if got := answers[0].Query.Get("session"); got != "sess-1" {
		t.Errorf("answer session = %q", got)
	}

	questions := f.up.callsTo("question")
	if len(questions)-before != 1 {
		t.Fatalf("question calls after answer = %d, want 1", len(questions)-before)
	}
	if got := questions[len(questions)-1].Query.Get("session"); got != "sess-1" {
		t.Errorf("question session = %q, want sess-1", got)
	}

	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Errorf("state = %s, want awaiting_answer", got)
	}
	if f.surface.question == nil || f.surface.question.Text != "Is it blue?" {
		t.Errorf("surface question = %+v", f.surface.question)
	}
	if f.surface.input.Kind != InputBoolean {
		t.Errorf("input kind = %s, want boolean", f.surface.input.Kind)
	}
}

func TestAnswerCompletedRecordsResult(t *testing.T) {
	f := started(t, questionBody("Name the river", "TEXT"))
	f.up.reply("answer", okCompleted)
	f.up.reply("score", okScore)
	f.up.reply("leaderboard", okBoard)

	if err := f.ctrl.Answer(context.Background(), "  Pedieos "); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if got := f.up.callsTo("answer")[0].Query.Get("answer"); got != "  Pedieos " {
		t.Errorf("answer param = %q, want the text as typed", got)
	}
	if got := f.ctrl.State(); got != StateCompleted {
		t.Fatalf("state = %s, want completed", got)
	}
	if n := len(f.up.callsTo("question")); n != 1 {
		t.Errorf("question calls = %d, want 1", n)
	}
	if len(f.recorder.results) != 1 {
		t.Fatalf("recorded results = %d, want 1", len(f.recorder.results))
	}
	res := f.recorder.results[0]
	if res.Player != "ana" || res.HuntID != "hunt-1" || res.Session != "sess-1" || res.Score != 120 || res.ClientID != "client-1" {
		t.Errorf("result = %+v", res)
	}
	if f.observer.completed != 1 {
		t.Errorf("completed count = %d, want 1", f.observer.completed)
	}
}

func TestSkipAdvances(t *testing.T) {
	f := started(t, questionBody("Skip me", "TEXT"))
	f.up.reply("skip", okContinue)
	f.up.reply("question", questionBody("Next", "INTEGER"))

	if err := f.ctrl.Skip(context.Background()); err != nil {
		t.Fatalf("skip: %v", err)
	}

	skips := f.up.callsTo("skip")
	if len(skips) != 1 || skips[0].Query.Get("session") != "sess-1" {
		t.Fatalf("skip calls = %+v", skips)
	}
	if f.surface.question == nil || f.surface.question.Text != "Next" {
		t.Errorf("surface question = %+v", f.surface.question)
	}
	if !f.surface.input.Integer {
		t.Error("expected integer input for INTEGER question")
	}
}

func TestAdvanceWithoutSession(t *testing.T) {
	tests := []struct {
		name string
		op   func(c *Controller) error
	}{
		{name: "skip", op: func(c *Controller) error { return c.Skip(context.Background()) }},
		{name: "answer", op: func(c *Controller) error { return c.Answer(context.Background(), "x") }},
		{name: "fetch question", op: func(c *Controller) error { return c.FetchQuestion(context.Background()) }},
		{name: "results", op: func(c *Controller) error { return c.LoadResults(context.Background()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if err := tt.op(f.ctrl); !errors.Is(err, ErrNoActiveSession) {
				t.Fatalf("expected ErrNoActiveSession, got %v", err)
			}
			if n := f.up.totalCalls(); n != 0 {
				t.Errorf("upstream calls = %d, want 0", n)
			}
			if !f.surface.lastMessage().IsError {
				t.Error("expected an error notification")
			}
		})
	}
}

func TestAnswerFailureIsRecoverable(t *testing.T) {
	f := started(t, questionBody("Year?", "INTEGER"))
	f.up.reply("answer", "HTTP 503", okContinue)
	f.up.reply("question", questionBody("Next", "TEXT"))

	err := f.ctrl.Answer(context.Background(), "1571")
	var he *thapi.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Fatalf("state = %s, want awaiting_answer", got)
	}
	if snap := f.ctrl.Snapshot(); snap.Question == nil || snap.Question.Text != "Year?" || snap.Session != "sess-1" {
		t.Fatalf("snapshot after failure = %+v", snap)
	}
	if !f.surface.lastMessage().IsError {
		t.Error("expected an error notification")
	}

	if err := f.ctrl.Answer(context.Background(), "1571"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.surface.question == nil || f.surface.question.Text != "Next" {
		t.Errorf("surface question = %+v", f.surface.question)
	}
}

func TestSkipDomainErrorSurfacesMessage(t *testing.T) {
	f := started(t, questionBody("Q", "TEXT"))
	f.up.reply("skip", `{"status":"ERROR","errorMessage":"Cannot skip mandatory question"}`)

	if err := f.ctrl.Skip(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !f.surface.hasMessage("Cannot skip mandatory question") {
		t.Errorf("messages = %+v", f.surface.messages)
	}
	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Errorf("state = %s, want awaiting_answer", got)
	}
}

func TestInvalidAnswerMakesNoCall(t *testing.T) {
	f := started(t, questionBody("Is it true?", "BOOLEAN"))

	err := f.ctrl.Answer(context.Background(), "maybe")
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if n := len(f.up.callsTo("answer")); n != 0 {
		t.Errorf("answer calls = %d, want 0", n)
	}
	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Errorf("state = %s, want awaiting_answer", got)
	}
}

func TestQuestionFetchFailureThenRetry(t *testing.T) {
	f := newFixture(t)
	f.up.reply("start", okSession)
	f.up.reply("question", "HTTP 503", questionBody("Finally", "TEXT"))

	if err := f.ctrl.Start(context.Background(), "ana", "hunt-1"); err == nil {
		t.Fatal("expected the first question fetch to fail")
	}
	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Fatalf("state = %s, want awaiting_answer", got)
	}
	if _, ok := f.ctrl.Session(); !ok {
		t.Fatal("session lost after question failure")
	}

	if err := f.ctrl.Answer(context.Background(), "x"); !errors.Is(err, ErrNotAwaitingAnswer) {
		t.Fatalf("answer without question: expected ErrNotAwaitingAnswer, got %v", err)
	}

	if err := f.ctrl.FetchQuestion(context.Background()); err != nil {
		t.Fatalf("fetch question: %v", err)
	}
	if f.surface.question == nil || f.surface.question.Text != "Finally" {
		t.Errorf("surface question = %+v", f.surface.question)
	}
}

func TestLeaderboardFailureKeepsScore(t *testing.T) {
	f := started(t, questionBody("Last", "TEXT"))
	f.up.reply("answer", okCompleted)
	f.up.reply("score", okScore)
	f.up.reply("leaderboard", `{"status":"ERROR","errorMessage":"Leaderboard unavailable"}`, okBoard)

	err := f.ctrl.Answer(context.Background(), "done")
	if err == nil {
		t.Fatal("expected leaderboard error")
	}
	if f.surface.score == nil || *f.surface.score != 120 {
		t.Fatalf("score = %v, want 120", f.surface.score)
	}
	if !f.surface.hasMessage("Leaderboard unavailable") {
		t.Errorf("messages = %+v", f.surface.messages)
	}
	if got := f.ctrl.State(); got != StateCompleted {
		t.Fatalf("state = %s, want completed", got)
	}

	if err := f.ctrl.LoadResults(context.Background()); err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(f.surface.leaderboard) != 2 {
		t.Errorf("leaderboard = %+v", f.surface.leaderboard)
	}
}

func TestScoreFailureStillLoadsLeaderboard(t *testing.T) {
	f := started(t, questionBody("Last", "TEXT"))
	f.up.reply("skip", okCompleted)
	f.up.reply("score", `{"status":"ERROR","errorMessage":"Score not ready"}`)
	f.up.reply("leaderboard", okBoard)

	if err := f.ctrl.Skip(context.Background()); err == nil {
		t.Fatal("expected score error")
	}
	if f.surface.score != nil {
		t.Errorf("score = %v, want none", *f.surface.score)
	}
	if len(f.surface.leaderboard) != 2 {
		t.Errorf("leaderboard = %+v", f.surface.leaderboard)
	}
	if len(f.recorder.results) != 0 {
		t.Errorf("recorded %d results without a score", len(f.recorder.results))
	}
}

func TestAnswerAfterCompletion(t *testing.T) {
	f := started(t, questionBody("Last", "TEXT"))
	f.up.reply("answer", okCompleted)
	f.up.reply("score", okScore)
	f.up.reply("leaderboard", okBoard)

	if err := f.ctrl.Answer(context.Background(), "x"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	calls := f.up.totalCalls()

	if err := f.ctrl.Skip(context.Background()); !errors.Is(err, ErrNotAwaitingAnswer) {
		t.Fatalf("expected ErrNotAwaitingAnswer, got %v", err)
	}
	if n := f.up.totalCalls(); n != calls {
		t.Errorf("upstream calls grew from %d to %d", calls, n)
	}
}

func TestStartNewHuntReplacesSession(t *testing.T) {
	f := started(t, questionBody("First hunt", "TEXT"))
	f.up.reply("start", `{"status":"OK","session":"sess-2"}`)
	f.up.reply("question", questionBody("Second hunt", "TEXT"))

	if err := f.ctrl.Start(context.Background(), "ana", "hunt-2"); err != nil {
		t.Fatalf("second start: %v", err)
	}
	snap := f.ctrl.Snapshot()
	if snap.Session != "sess-2" || snap.HuntID != "hunt-2" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestListHunts(t *testing.T) {
	f := newFixture(t)
	f.up.reply("list", `{"status":"OK","treasureHunts":[{"uuid":"u1","name":"One"},{"uuid":"u2","name":"Two"}]}`)

	if err := f.ctrl.ListHunts(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(f.surface.hunts) != 2 || f.surface.hunts[1].UUID != "u2" {
		t.Errorf("hunts = %+v", f.surface.hunts)
	}
}

func TestListHuntsDomainError(t *testing.T) {
	f := newFixture(t)
	f.up.reply("list", `{"status":"ERROR","errorMessage":"Maintenance"}`)

	if err := f.ctrl.ListHunts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !f.surface.hasMessage("Maintenance") {
		t.Errorf("messages = %+v", f.surface.messages)
	}
}

// blockingAPI holds every Answer call until release is closed.
type blockingAPI struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) Start(context.Context, string, string) (string, error) { return "s", nil }

func (b *blockingAPI) Question(context.Context, string) (treasurehunt.QuestionResult, error) {
	return treasurehunt.QuestionResult{Question: treasurehunt.Question{Text: "q", Type: treasurehunt.QuestionText}}, nil
}

func (b *blockingAPI) Answer(context.Context, string, string) (bool, error) {
	b.entered <- struct{}{}
	<-b.release
	return false, nil
}

func (b *blockingAPI) Skip(context.Context, string) (bool, error) { return false, nil }

func (b *blockingAPI) Score(context.Context, string) (float64, error) { return 0, nil }

func (b *blockingAPI) Leaderboard(context.Context, string, int) ([]treasurehunt.LeaderboardEntry, error) {
	return nil, nil
}

func TestSingleRequestInFlight(t *testing.T) {
	api := &blockingAPI{entered: make(chan struct{}), release: make(chan struct{})}
	surface := &recordingSurface{}
	ctrl := NewController(api, listerFunc(nil), surface, NewPresenter(discardLogger()), discardLogger(), Options{})

	if err := ctrl.Start(context.Background(), "ana", "h"); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- ctrl.Answer(context.Background(), "first") }()

	select {
	case <-api.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first answer never reached the API")
	}

	if got := ctrl.State(); got != StateAdvancing {
		t.Errorf("state while in flight = %s, want advancing", got)
	}
	if err := ctrl.Answer(context.Background(), "second"); !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("second answer: expected ErrRequestInFlight, got %v", err)
	}
	if err := ctrl.Skip(context.Background()); !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("skip: expected ErrRequestInFlight, got %v", err)
	}

	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if got := ctrl.State(); got != StateAwaitingAnswer {
		t.Errorf("state = %s, want awaiting_answer", got)
	}
}

func TestAnswerRejectsNonDecimalNumber(t *testing.T) {
	f := started(t, questionBody("Height in metres?", "NUMERIC"))

	err := f.ctrl.Answer(context.Background(), "0x1p4")
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if n := len(f.up.callsTo("answer")); n != 0 {
		t.Errorf("answer calls = %d, want 0", n)
	}
	if got := f.ctrl.State(); got != StateAwaitingAnswer {
		t.Errorf("state = %s, want awaiting_answer", got)
	}
}
