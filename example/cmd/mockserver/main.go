// Standalone mock review API for trying the CLI without real tokens.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	export API_TOKEN=mock-token BOT_TOKEN=<bot token> CHAT_ID=<chat id>
//	export HOMEWORK_ENDPOINT=http://localhost:9999/api/user_api/homework_statuses/
//	go run ./cmd/homework-bot run --from 0
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

func main() {
	fmt.Println("Mock review API starting on :9999")
	fmt.Println("The homework cycles through: reviewing → rejected → approved")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	token := os.Getenv("MOCK_TOKEN")
	if token == "" {
		token = "mock-token"
	}

	var (
		mu       sync.Mutex
		statuses = []string{"reviewing", "rejected", "approved"}
		state    = &mockState{
			updatedAt:    time.Now(),
			nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
		}
	)

	http.HandleFunc("/api/user_api/homework_statuses/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("Authorization") != "OAuth "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"not_authenticated"}`))
			return
		}
		fromDate, err := strconv.ParseInt(r.URL.Query().Get("from_date"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"UnknownError","error":{"error":"Wrong from_date format"}}`))
			return
		}

		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		if time.Now().After(state.nextChangeAt) {
			oldStatus := statuses[state.statusIdx]
			state.statusIdx = (state.statusIdx + 1) % len(statuses)
			state.updatedAt = time.Now()
			state.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("status change", "from", oldStatus, "to", statuses[state.statusIdx])
		}
		status := statuses[state.statusIdx]
		updatedAt := state.updatedAt
		mu.Unlock()

		homeworks := []map[string]any{}
		if updatedAt.Unix() >= fromDate {
			homeworks = append(homeworks, map[string]any{
				"homework_name": "student__hw05_final.zip",
				"status":        status,
				"date_updated":  updatedAt.UTC().Format(time.RFC3339),
			})
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"homeworks":    homeworks,
			"current_date": time.Now().Unix(),
		})
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type mockState struct {
	statusIdx    int
	updatedAt    time.Time
	nextChangeAt time.Time
}
