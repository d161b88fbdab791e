package game

import (
	"errors"
	"fmt"

	"github.com/playperu/treasurehunt/internal/thapi"
)

// describe renders err as player-facing text prefixed by what failed. The
// server's own errorMessage is passed through verbatim.
func describe(what string, err error) string {
	var (
		domainErr *thapi.DomainError
		httpErr   *thapi.HTTPError
		netErr    *thapi.NetworkError
		decodeErr *thapi.DecodeError
	)
	switch {
	case errors.As(err, &domainErr):
		if domainErr.Message == "" {
			return what + ": Unknown error happened."
		}
		return what + ": " + domainErr.Message
	case errors.As(err, &netErr):
		return what + ": cannot reach the game server. Check your internet connection and try again."
	case errors.As(err, &httpErr):
		return fmt.Sprintf("%s: the game server answered with status %d. Try again.", what, httpErr.Status)
	case errors.As(err, &decodeErr):
		return what + ": the game server sent a response that could not be read."
	default:
		return what + "."
	}
}
