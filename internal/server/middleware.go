package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

type ctxKey int

const (
	ctxKeyGame ctxKey = iota
)

const (
	clientCookieName = "th_client"
	playerCookieName = "username"
	cookieMaxAge     = 365 * 24 * 60 * 60
)

// clientMiddleware identifies the browser by its client cookie, issuing one
// when missing, and resolves its game.
func clientMiddleware(clients *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(clientCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     clientCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   cookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxKeyGame, clients.Get(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func gameFrom(r *http.Request) *playerGame {
	return r.Context().Value(ctxKeyGame).(*playerGame)
}

// playerName returns the name stored in the player cookie, or "" when unset.
func playerName(r *http.Request) string {
	c, err := r.Cookie(playerCookieName)
	if err != nil {
		return ""
	}
	name, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return name
}

func setPlayerName(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    url.QueryEscape(name),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}
