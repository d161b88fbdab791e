// Package game drives one player through a hunt: it owns the session, walks
// the start/question/answer/completion state machine against the upstream
// API and tells a Surface what to show.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

const DefaultLeaderboardLimit = 10

// API is the subset of the upstream client the controller drives.
type API interface {
	Start(ctx context.Context, player, huntID string) (string, error)
	Question(ctx context.Context, session string) (treasurehunt.QuestionResult, error)
	Answer(ctx context.Context, session, answer string) (bool, error)
	Skip(ctx context.Context, session string) (bool, error)
	Score(ctx context.Context, session string) (float64, error)
	Leaderboard(ctx context.Context, session string, limit int) ([]treasurehunt.LeaderboardEntry, error)
}

type HuntLister interface {
	List(ctx context.Context) ([]treasurehunt.Hunt, error)
}

// ResultRecorder persists finished attempts.
type ResultRecorder interface {
	RecordResult(ctx context.Context, res treasurehunt.Result) error
}

// Observer is told about hunt lifecycle milestones.
type Observer interface {
	HuntStarted()
	HuntCompleted()
	HuntFailed()
}

type Options struct {
	// ClientID identifies the browser the controller belongs to.
	ClientID         string
	LeaderboardLimit int
	Recorder         ResultRecorder
	Observer         Observer
}

// Snapshot is a consistent copy of the controller's state.
type Snapshot struct {
	State    State
	Session  string
	HuntID   string
	Player   string
	Question *treasurehunt.Question
	Input    *InputSpec
}

type Controller struct {
	api       API
	hunts     HuntLister
	surface   Surface
	presenter *Presenter
	logger    *slog.Logger
	opts      Options

	// busy is held for the whole of an operation, including the calls it
	// chains. Operations use TryLock so a second one fails fast.
	busy sync.Mutex

	mu       sync.RWMutex
	state    State
	session  string
	huntID   string
	player   string
	question *treasurehunt.Question
	input    InputSpec
}

func NewController(api API, hunts HuntLister, surface Surface, presenter *Presenter, logger *slog.Logger, opts Options) *Controller {
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = DefaultLeaderboardLimit
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Controller{
		api:       api,
		hunts:     hunts,
		surface:   surface,
		presenter: presenter,
		logger:    logger,
		opts:      opts,
	}
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns the active session identifier, if any.
func (c *Controller) Session() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.session != ""
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		State:   c.state,
		Session: c.session,
		HuntID:  c.huntID,
		Player:  c.player,
	}
	if c.question != nil {
		q := *c.question
		in := c.input
		s.Question, s.Input = &q, &in
	}
	return s
}

// ListHunts loads the catalog onto the surface.
func (c *Controller) ListHunts(ctx context.Context) error {
	hunts, err := c.hunts.List(ctx)
	if err != nil {
		c.logger.Error("loading hunts failed", "error", err)
		c.surface.Notify(describe("The list of hunts cannot be loaded", err), true)
		return fmt.Errorf("listing hunts: %w", err)
	}
	c.surface.ShowHunts(hunts)
	return nil
}

// Start begins a new attempt at huntID for player and fetches the first
// question. Any previous session is discarded.
func (c *Controller) Start(ctx context.Context, player, huntID string) error {
	if !c.busy.TryLock() {
		return c.rejectBusy()
	}
	defer c.busy.Unlock()

	player = strings.TrimSpace(player)
	huntID = strings.TrimSpace(huntID)
	if player == "" || huntID == "" {
		c.logger.Warn("start rejected", "player_set", player != "", "hunt_set", huntID != "")
		c.surface.Notify("Cannot start the game: pick a hunt and set a player name first.", true)
		return fmt.Errorf("%w: player and hunt are required", ErrInvalidInput)
	}

	if err := c.apply(evStart); err != nil {
		c.logger.Error("start rejected", "error", err)
		c.surface.Notify("Cannot start the game right now.", true)
		return err
	}

	c.mu.Lock()
	c.session, c.huntID, c.player, c.question = "", huntID, player, nil
	c.mu.Unlock()
	c.surface.Reset()

	c.logger.Info("starting hunt", "hunt", huntID, "player", player)
	session, err := c.api.Start(ctx, player, huntID)
	if err == nil && session == "" {
		err = errors.New("server returned an empty session")
	}
	if err != nil {
		c.mustApply(evFail)
		c.opts.Observer.HuntFailed()
		c.logger.Error("starting hunt failed", "hunt", huntID, "error", err)
		c.surface.Notify(describe("Unfortunately the game cannot start", err), true)
		return fmt.Errorf("starting hunt: %w", err)
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.mustApply(evStarted)
	c.opts.Observer.HuntStarted()
	c.logger.Info("hunt started", "hunt", huntID, "session", session)

	return c.fetchQuestion(ctx)
}

// FetchQuestion retries loading the current question, e.g. after a failed
// fetch left nothing on screen.
func (c *Controller) FetchQuestion(ctx context.Context) error {
	if !c.busy.TryLock() {
		return c.rejectBusy()
	}
	defer c.busy.Unlock()

	if _, ok := c.Session(); !ok {
		return c.rejectNoSession("Game session not started yet so cannot get the next question.")
	}
	if st := c.State(); st != StateAwaitingAnswer {
		c.surface.Notify("There is no question to load right now.", true)
		return fmt.Errorf("%w: state is %s", ErrNotAwaitingAnswer, st)
	}
	return c.fetchQuestion(ctx)
}

// Answer submits raw through the current question's input and advances.
func (c *Controller) Answer(ctx context.Context, raw string) error {
	if !c.busy.TryLock() {
		return c.rejectBusy()
	}
	defer c.busy.Unlock()

	session, input, err := c.requireQuestion("No active game so no submitting answer.")
	if err != nil {
		return err
	}
	answer, err := input.Collect(raw)
	if err != nil {
		c.surface.Notify("Cannot submit the answer: "+err.Error(), true)
		return err
	}

	c.logger.Info("submitting answer", "session", session)
	return c.advance(ctx, "submitting answer", "Failed to submit the answer", func(ctx context.Context) (bool, error) {
		return c.api.Answer(ctx, session, answer)
	})
}

// Skip gives up on the current question and advances.
func (c *Controller) Skip(ctx context.Context) error {
	if !c.busy.TryLock() {
		return c.rejectBusy()
	}
	defer c.busy.Unlock()

	session, _, err := c.requireQuestion("Cannot skip: there is no active game.")
	if err != nil {
		return err
	}

	c.logger.Info("skipping question", "session", session)
	return c.advance(ctx, "skipping question", "Failed to skip the question", func(ctx context.Context) (bool, error) {
		return c.api.Skip(ctx, session)
	})
}

// LoadResults retries the score and leaderboard retrieval of a completed hunt.
func (c *Controller) LoadResults(ctx context.Context) error {
	if !c.busy.TryLock() {
		return c.rejectBusy()
	}
	defer c.busy.Unlock()

	if _, ok := c.Session(); !ok {
		return c.rejectNoSession("Cannot show the results due to no active game.")
	}
	if st := c.State(); st != StateCompleted {
		c.surface.Notify("The hunt is not finished yet.", true)
		return fmt.Errorf("%w: state is %s", ErrNotCompleted, st)
	}
	return c.loadResults(ctx)
}

func (c *Controller) requireQuestion(noSessionMsg string) (string, InputSpec, error) {
	c.mu.RLock()
	session, state, hasQuestion, input := c.session, c.state, c.question != nil, c.input
	c.mu.RUnlock()

	if session == "" {
		return "", InputSpec{}, c.rejectNoSession(noSessionMsg)
	}
	if state != StateAwaitingAnswer || !hasQuestion {
		c.surface.Notify("There is no question waiting for an answer.", true)
		return "", InputSpec{}, fmt.Errorf("%w: state is %s", ErrNotAwaitingAnswer, state)
	}
	return session, input, nil
}

// advance runs an answer or skip call and follows it to the next question
// or to completion. A failed call leaves the current question in place.
func (c *Controller) advance(ctx context.Context, op, failMsg string, call func(context.Context) (bool, error)) error {
	c.mustApply(evAdvance)

	completed, err := call(ctx)
	if err != nil {
		c.mustApply(evAdvanceFailed)
		c.logger.Error(op+" failed", "error", err)
		c.surface.Notify(describe(failMsg, err), true)
		return fmt.Errorf("%s: %w", op, err)
	}

	if completed {
		c.logger.Info("hunt completed", "after", op)
		return c.complete(ctx)
	}

	c.mustApply(evAdvanced)
	c.mu.Lock()
	c.question = nil
	c.mu.Unlock()
	return c.fetchQuestion(ctx)
}

func (c *Controller) fetchQuestion(ctx context.Context) error {
	session, _ := c.Session()

	res, err := c.api.Question(ctx, session)
	if err != nil {
		c.mu.Lock()
		c.question = nil
		c.mu.Unlock()
		c.surface.ClearQuestion()
		c.logger.Error("fetching question failed", "session", session, "error", err)
		c.surface.Notify(describe("The next question cannot be shown", err), true)
		return fmt.Errorf("fetching question: %w", err)
	}

	if res.Completed {
		c.logger.Info("hunt completed", "session", session)
		return c.complete(ctx)
	}

	q := res.Question
	input := c.presenter.Present(q)
	c.mustApply(evQuestion)
	c.mu.Lock()
	c.question, c.input = &q, input
	c.mu.Unlock()
	c.surface.ShowQuestion(q, input)
	c.logger.Debug("question shown", "session", session, "type", q.RawType)
	return nil
}

func (c *Controller) complete(ctx context.Context) error {
	c.mustApply(evCompleted)
	c.mu.Lock()
	c.question = nil
	c.mu.Unlock()
	c.surface.ClearQuestion()
	c.opts.Observer.HuntCompleted()
	c.surface.Notify("Congratulations, you finished the game.", false)
	return c.loadResults(ctx)
}

// loadResults fetches the score and then the leaderboard. Each step reports
// its own failure and neither hides the other.
func (c *Controller) loadResults(ctx context.Context) error {
	session, _ := c.Session()
	return errors.Join(
		c.loadScore(ctx, session),
		c.loadLeaderboard(ctx, session),
	)
}

func (c *Controller) loadScore(ctx context.Context, session string) error {
	score, err := c.api.Score(ctx, session)
	if err != nil {
		c.logger.Error("fetching score failed", "session", session, "error", err)
		c.surface.Notify(describe("Cannot get the final score", err), true)
		return fmt.Errorf("fetching score: %w", err)
	}
	c.surface.ShowScore(score)
	c.logger.Info("score shown", "session", session, "score", score)

	if c.opts.Recorder != nil {
		c.mu.RLock()
		res := treasurehunt.Result{
			ClientID:   c.opts.ClientID,
			Player:     c.player,
			HuntID:     c.huntID,
			Session:    session,
			Score:      score,
			FinishedAt: time.Now().UTC(),
		}
		c.mu.RUnlock()
		if err := c.opts.Recorder.RecordResult(ctx, res); err != nil {
			c.logger.Error("recording result failed", "session", session, "error", err)
		}
	}
	return nil
}

func (c *Controller) loadLeaderboard(ctx context.Context, session string) error {
	entries, err := c.api.Leaderboard(ctx, session, c.opts.LeaderboardLimit)
	if err != nil {
		c.logger.Error("fetching leaderboard failed", "session", session, "error", err)
		c.surface.Notify(describe("Cannot get the leaderboard", err), true)
		return fmt.Errorf("fetching leaderboard: %w", err)
	}
	c.surface.ShowLeaderboard(entries)
	return nil
}

func (c *Controller) apply(ev event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := transition(c.state, ev)
	if err != nil {
		return err
	}
	c.logger.Debug("state transition", "from", c.state, "event", ev, "to", next)
	c.state = next
	return nil
}

// mustApply is used where the busy lock already guarantees the edge exists.
func (c *Controller) mustApply(ev event) {
	if err := c.apply(ev); err != nil {
		panic(err)
	}
}

func (c *Controller) rejectBusy() error {
	c.surface.Notify("Please wait, the previous action is still running.", true)
	return ErrRequestInFlight
}

func (c *Controller) rejectNoSession(msg string) error {
	c.logger.Warn("operation without an active session")
	c.surface.Notify(msg, true)
	return ErrNoActiveSession
}

type nopObserver struct{}

func (nopObserver) HuntStarted()   {}
func (nopObserver) HuntCompleted() {}
func (nopObserver) HuntFailed()    {}
