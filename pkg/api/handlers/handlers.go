package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cbodonnell/racetrack/pkg/game/types"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/gorilla/mux"
)

// StateSource exposes a consistent copy of the live game.
type StateSource interface {
	Snapshot() *types.GameState
}

// ScoreSource exposes the cumulative win counts indexed by slot.
type ScoreSource interface {
	Scores() []int
}

type ScoreEntry struct {
	Player int `json:"player"`
	Wins   int `json:"wins"`
}

func HandleGetState(source StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, source.Snapshot())
	}
}

func HandleListScores(source ScoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores := source.Scores()
		entries := make([]ScoreEntry, 0, len(scores))
		for player, wins := range scores {
			entries = append(entries, ScoreEntry{Player: player, Wins: wins})
		}
		writeJSON(w, entries)
	}
}

func HandleGetScore(source ScoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := strconv.Atoi(mux.Vars(r)["player"])
		if err != nil {
			http.Error(w, "Failed to parse player", http.StatusBadRequest)
			return
		}
		scores := source.Scores()
		if player < 0 || player >= len(scores) {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, ScoreEntry{Player: player, Wins: scores[player]})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
