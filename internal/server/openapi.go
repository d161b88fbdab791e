package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for errors outside the gameplay routes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthStatus is one dependency's entry in the /healthz body.
type HealthStatus struct {
	Status string `json:"status"`
}

type historyQuery struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" description:"Maximum number of results, default 20."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Treasure Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Browser-facing API of the treasure-hunt client. " +
		"Each browser is identified by the th_client cookie and the player by the username cookie.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/hunts
	getHunts, _ := r.NewOperationContext(http.MethodGet, "/api/hunts")
	getHunts.SetSummary("List hunts")
	getHunts.SetDescription("Loads the hunt catalog into the view. Each item is labelled with the hunt name and bound to its id.")
	addPlayResponses(getHunts, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(getHunts)

	// GET /api/player
	getPlayer, _ := r.NewOperationContext(http.MethodGet, "/api/player")
	getPlayer.SetSummary("Current player")
	getPlayer.SetDescription("Returns the player name stored in the username cookie, empty when unset.")
	getPlayer.AddRespStructure(PlayerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getPlayer)

	// POST /api/player
	postPlayer, _ := r.NewOperationContext(http.MethodPost, "/api/player")
	postPlayer.SetSummary("Set player name")
	postPlayer.SetDescription("Stores the player name in the username cookie.")
	postPlayer.AddReqStructure(PlayerRequest{})
	postPlayer.AddRespStructure(PlayerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPlayer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postPlayer)

	// GET /api/history
	getHistory, _ := r.NewOperationContext(http.MethodGet, "/api/history")
	getHistory.SetSummary("Result history")
	getHistory.SetDescription("Finished hunts of the current player, newest first.")
	getHistory.AddReqStructure(historyQuery{})
	getHistory.AddRespStructure(HistoryResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHistory.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getHistory)

	// GET /api/play/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/play/state")
	getState.SetSummary("Current view")
	getState.SetDescription("Returns the client's view without calling upstream.")
	getState.AddRespStructure(PlayResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// GET /api/play/config
	getConfig, _ := r.NewOperationContext(http.MethodGet, "/api/play/config")
	getConfig.SetSummary("Geolocation options")
	getConfig.SetDescription("Options the browser passes to the geolocation API. Durations in milliseconds.")
	getConfig.AddRespStructure(GeoConfigResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getConfig)

	// GET /api/play/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/play/events")
	getEvents.SetSummary("SSE view stream")
	getEvents.SetDescription("Server-Sent Events stream of the client's view. The current view is sent on connect.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/play/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/play/start")
	postStart.SetSummary("Start hunt")
	postStart.SetDescription("Starts a new attempt for the player in the username cookie and fetches the first question.")
	postStart.AddReqStructure(StartRequest{})
	addPlayResponses(postStart, http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(postStart)

	// POST /api/play/question
	postQuestion, _ := r.NewOperationContext(http.MethodPost, "/api/play/question")
	postQuestion.SetSummary("Reload question")
	postQuestion.SetDescription("Fetches the current question again after a failed load.")
	addPlayResponses(postQuestion, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(postQuestion)

	// POST /api/play/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/play/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Submits an answer for the current question and moves to the next one or to the results.")
	postAnswer.AddReqStructure(AnswerRequest{})
	addPlayResponses(postAnswer, http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(postAnswer)

	// POST /api/play/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/play/skip")
	postSkip.SetSummary("Skip question")
	postSkip.SetDescription("Skips the current question and moves to the next one or to the results.")
	addPlayResponses(postSkip, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(postSkip)

	// POST /api/play/results
	postResults, _ := r.NewOperationContext(http.MethodPost, "/api/play/results")
	postResults.SetSummary("Reload results")
	postResults.SetDescription("Fetches the score and leaderboard of a completed hunt again.")
	addPlayResponses(postResults, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(postResults)

	// POST /api/play/location
	postLocation, _ := r.NewOperationContext(http.MethodPost, "/api/play/location")
	postLocation.SetSummary("Report location")
	postLocation.SetDescription("Reports a position fix, or the reason none could be taken, for the active session.")
	postLocation.AddReqStructure(LocationFix{})
	addPlayResponses(postLocation, http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway)
	_ = r.AddOperation(postLocation)

	// GET /ws/location
	getWSLocation, _ := r.NewOperationContext(http.MethodGet, "/ws/location")
	getWSLocation.SetSummary("Location socket")
	getWSLocation.SetDescription("Upgrades to a WebSocket that accepts LocationFix messages and answers each with a LocationAck.")
	getWSLocation.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getWSLocation)

	return r.Spec
}

// addPlayResponses documents the view-carrying 200 and the listed error
// statuses of a gameplay route.
func addPlayResponses(oc openapi.OperationContext, errStatuses ...int) {
	oc.AddRespStructure(PlayResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	for _, status := range errStatuses {
		oc.AddRespStructure(PlayResponse{}, openapi.WithHTTPStatus(status))
	}
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
