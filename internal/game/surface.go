package game

import "github.com/playperu/treasurehunt/internal/treasurehunt"

// Notifier surfaces human-readable status text to the player.
type Notifier interface {
	Notify(message string, isError bool)
}

// Surface is the rendering collaborator the controller drives. The controller
// never renders anything itself.
type Surface interface {
	Notifier
	ShowHunts(hunts []treasurehunt.Hunt)
	// ShowQuestion replaces whatever question is on screen.
	ShowQuestion(q treasurehunt.Question, input InputSpec)
	ClearQuestion()
	ShowScore(score float64)
	ShowLeaderboard(entries []treasurehunt.LeaderboardEntry)
	// Reset drops question and results from a previous attempt.
	Reset()
}
