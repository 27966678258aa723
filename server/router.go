package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/game"
	"github.com/xp-team/cryptopoker/server/store"
)

// Router exposes the orchestrator over REST. It is thin glue: parse,
// delegate, translate the error kind.
func Router(games *game.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Get("/api/matches", func(w http.ResponseWriter, req *http.Request) {
		matches, err := games.ListOpenMatches(req.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchViews(matches))
	})

	r.Post("/api/matches", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			PlayerAID int64 `json:"playerAId"`
			ChatAID   int64 `json:"chatAId"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		m, err := games.CreateMatch(req.Context(), body.PlayerAID, body.ChatAID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, matchView(m))
	})

	r.Post("/api/matches/{matchID}/connect", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			PlayerBID int64 `json:"playerBId"`
			ChatBID   int64 `json:"chatBId"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		m, deal, err := games.ConnectMatch(req.Context(), chi.URLParam(req, "matchID"), body.PlayerBID, body.ChatBID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"match": matchView(m), "deal": deal})
	})

	r.Post("/api/matches/{matchID}/action", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			PlayerID int64  `json:"playerId"`
			Action   string `json:"action"`
			BetSize  int    `json:"betSize"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		kind, ok := engine.ParseAction(body.Action)
		if !ok {
			http.Error(w, "unknown action", http.StatusNotAcceptable)
			return
		}
		deal, err := games.TakeAction(req.Context(), chi.URLParam(req, "matchID"), body.PlayerID, kind, body.BetSize)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deal)
	})

	return r
}

type matchJSON struct {
	ID       string `json:"id"`
	PlayerA  int64  `json:"playerA"`
	BalanceA int    `json:"playerABalance"`
	PlayerB  *int64 `json:"playerB"`
	BalanceB int    `json:"playerBBalance"`
	TurnFor  *int64 `json:"turnFor"`
}

func matchView(m *store.Match) matchJSON {
	return matchJSON{
		ID:       m.ID,
		PlayerA:  m.PlayerA,
		BalanceA: m.BalanceA,
		PlayerB:  m.PlayerB,
		BalanceB: m.BalanceB,
		TurnFor:  m.TurnFor,
	}
}

func matchViews(ms []store.Match) []matchJSON {
	out := make([]matchJSON, len(ms))
	for i := range ms {
		out[i] = matchView(&ms[i])
	}
	return out
}

func readJSON(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var status int
	switch game.KindOf(err) {
	case game.NotFound:
		status = http.StatusNotFound
	case game.Forbidden:
		status = http.StatusForbidden
	case game.NotAcceptable:
		status = http.StatusNotAcceptable
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
