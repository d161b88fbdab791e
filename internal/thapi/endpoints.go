package thapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

const (
	EndpointList        = "list"
	EndpointStart       = "start"
	EndpointQuestion    = "question"
	EndpointAnswer      = "answer"
	EndpointSkip        = "skip"
	EndpointLocation    = "location"
	EndpointScore       = "score"
	EndpointLeaderboard = "leaderboard"
)

type huntPayload struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type listResponse struct {
	TreasureHunts []huntPayload `json:"treasureHunts"`
}

type startResponse struct {
	Session string `json:"session"`
}

type questionResponse struct {
	Completed       bool     `json:"completed"`
	QuestionText    string   `json:"questionText"`
	QuestionType    string   `json:"questionType"`
	PossibleAnswers []string `json:"possibleAnswers"`
}

type advanceResponse struct {
	Completed bool `json:"completed"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

type leaderboardResponse struct {
	Leaderboard []struct {
		Player string  `json:"player"`
		Score  float64 `json:"score"`
	} `json:"leaderboard"`
}

// ListHunts returns the available hunts in server order.
func (c *Client) ListHunts(ctx context.Context) ([]treasurehunt.Hunt, error) {
	var resp listResponse
	if err := c.call(ctx, EndpointList, nil, &resp); err != nil {
		return nil, err
	}
	hunts := make([]treasurehunt.Hunt, 0, len(resp.TreasureHunts))
	for _, h := range resp.TreasureHunts {
		hunts = append(hunts, treasurehunt.Hunt{UUID: h.UUID, Name: h.Name})
	}
	return hunts, nil
}

// Start opens a session for player on the given hunt.
func (c *Client) Start(ctx context.Context, player, huntID string) (string, error) {
	params := url.Values{
		"player":           {player},
		"app":              {c.appName},
		"treasure-hunt-id": {huntID},
	}
	var resp startResponse
	if err := c.call(ctx, EndpointStart, params, &resp); err != nil {
		return "", err
	}
	return resp.Session, nil
}

func (c *Client) Question(ctx context.Context, session string) (treasurehunt.QuestionResult, error) {
	var resp questionResponse
	if err := c.call(ctx, EndpointQuestion, url.Values{"session": {session}}, &resp); err != nil {
		return treasurehunt.QuestionResult{}, err
	}
	if resp.Completed {
		return treasurehunt.QuestionResult{Completed: true}, nil
	}
	return treasurehunt.QuestionResult{
		Question: treasurehunt.Question{
			Text:    resp.QuestionText,
			Type:    treasurehunt.ParseQuestionType(resp.QuestionType),
			RawType: resp.QuestionType,
			Choices: resp.PossibleAnswers,
		},
	}, nil
}

// Answer submits answer for the current question and reports whether the
// hunt is now completed.
func (c *Client) Answer(ctx context.Context, session, answer string) (bool, error) {
	var resp advanceResponse
	params := url.Values{"session": {session}, "answer": {answer}}
	if err := c.call(ctx, EndpointAnswer, params, &resp); err != nil {
		return false, err
	}
	return resp.Completed, nil
}

func (c *Client) Skip(ctx context.Context, session string) (bool, error) {
	var resp advanceResponse
	if err := c.call(ctx, EndpointSkip, url.Values{"session": {session}}, &resp); err != nil {
		return false, err
	}
	return resp.Completed, nil
}

func (c *Client) Location(ctx context.Context, session string, lat, lon float64) error {
	params := url.Values{
		"session":   {session},
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	return c.call(ctx, EndpointLocation, params, nil)
}

func (c *Client) Score(ctx context.Context, session string) (float64, error) {
	var resp scoreResponse
	if err := c.call(ctx, EndpointScore, url.Values{"session": {session}}, &resp); err != nil {
		return 0, err
	}
	return resp.Score, nil
}

// Leaderboard returns up to limit entries ranked by score.
func (c *Client) Leaderboard(ctx context.Context, session string, limit int) ([]treasurehunt.LeaderboardEntry, error) {
	params := url.Values{
		"session": {session},
		"sorted":  {"true"},
		"limit":   {strconv.Itoa(limit)},
	}
	var resp leaderboardResponse
	if err := c.call(ctx, EndpointLeaderboard, params, &resp); err != nil {
		return nil, err
	}
	entries := make([]treasurehunt.LeaderboardEntry, 0, len(resp.Leaderboard))
	for _, e := range resp.Leaderboard {
		entries = append(entries, treasurehunt.LeaderboardEntry{Player: e.Player, Score: e.Score})
	}
	return entries, nil
}
