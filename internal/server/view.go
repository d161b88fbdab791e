package server

import (
	"slices"
	"sync"

	"github.com/playperu/treasurehunt/internal/game"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// HuntItem is one selectable entry in the hunt list.
type HuntItem struct {
	Label  string `json:"label"`
	HuntID string `json:"huntId"`
}

type QuestionView struct {
	Text  string         `json:"text"`
	Type  string         `json:"type"`
	Input game.InputSpec `json:"input"`
}

type MessageView struct {
	Text    string `json:"text"`
	IsError bool   `json:"isError"`
}

type LeaderboardRow struct {
	Rank   int     `json:"rank"`
	Player string  `json:"player"`
	Score  float64 `json:"score"`
}

// ViewState is everything the browser renders for one client.
type ViewState struct {
	Phase       string           `json:"phase"`
	Hunts       []HuntItem       `json:"hunts"`
	Question    *QuestionView    `json:"question"`
	Message     *MessageView     `json:"message"`
	Score       *float64         `json:"score"`
	Leaderboard []LeaderboardRow `json:"leaderboard"`
}

// view is the game.Surface of one browser. Every change is published to the
// broker under the client id.
type view struct {
	clientID string
	broker   *Broker
	phase    func() game.State

	mu    sync.Mutex
	state ViewState
}

func newView(clientID string, broker *Broker) *view {
	return &view{
		clientID: clientID,
		broker:   broker,
		state:    ViewState{Hunts: []HuntItem{}, Leaderboard: []LeaderboardRow{}},
	}
}

func (v *view) Snapshot() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *view) snapshotLocked() ViewState {
	s := v.state
	s.Hunts = slices.Clone(v.state.Hunts)
	s.Leaderboard = slices.Clone(v.state.Leaderboard)
	if v.state.Question != nil {
		q := *v.state.Question
		q.Input.Options = slices.Clone(q.Input.Options)
		s.Question = &q
	}
	if v.state.Message != nil {
		m := *v.state.Message
		s.Message = &m
	}
	if v.state.Score != nil {
		score := *v.state.Score
		s.Score = &score
	}
	if v.phase != nil {
		s.Phase = v.phase().String()
	}
	return s
}

func (v *view) update(fn func(s *ViewState)) {
	v.mu.Lock()
	fn(&v.state)
	snap := v.snapshotLocked()
	v.mu.Unlock()

	if v.broker != nil {
		v.broker.Publish(v.clientID, Event{Type: "view", View: &snap})
	}
}

func (v *view) Notify(message string, isError bool) {
	v.update(func(s *ViewState) {
		s.Message = &MessageView{Text: message, IsError: isError}
	})
}

func (v *view) ShowHunts(hunts []treasurehunt.Hunt) {
	items := make([]HuntItem, 0, len(hunts))
	for _, h := range hunts {
		items = append(items, HuntItem{Label: h.Name, HuntID: h.UUID})
	}
	v.update(func(s *ViewState) { s.Hunts = items })
}

func (v *view) ShowQuestion(q treasurehunt.Question, input game.InputSpec) {
	v.update(func(s *ViewState) {
		s.Question = &QuestionView{Text: q.Text, Type: q.RawType, Input: input}
	})
}

func (v *view) ClearQuestion() {
	v.update(func(s *ViewState) { s.Question = nil })
}

func (v *view) ShowScore(score float64) {
	v.update(func(s *ViewState) { s.Score = &score })
}

func (v *view) ShowLeaderboard(entries []treasurehunt.LeaderboardEntry) {
	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, LeaderboardRow{Rank: i + 1, Player: e.Player, Score: e.Score})
	}
	v.update(func(s *ViewState) { s.Leaderboard = rows })
}

func (v *view) Reset() {
	v.update(func(s *ViewState) {
		s.Question = nil
		s.Message = nil
		s.Score = nil
		s.Leaderboard = []LeaderboardRow{}
	})
}
