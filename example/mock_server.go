package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// mockHomework tracks the review status of the single mock submission.
type mockHomework struct {
	statusIdx    int
	updatedAt    time.Time
	nextChangeAt time.Time
}

// StartMockReviewServer runs a mock review API that moves one homework
// through reviewing, rejected and approved, changing every 20-60 seconds.
// Requests must carry "Authorization: OAuth <token>".
// Call this in a goroutine before starting the bot.
func StartMockReviewServer(addr, token string) {
	var mu sync.Mutex
	statuses := []string{"reviewing", "rejected", "approved"}
	hw := &mockHomework{
		updatedAt:    time.Now(),
		nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/user_api/homework_statuses/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth "+token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"not_authenticated","message":"Учетные данные не были предоставлены."}`))
			return
		}

		fromDate, err := strconv.ParseInt(r.URL.Query().Get("from_date"), 10, 64)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"UnknownError","error":{"error":"Wrong from_date format"}}`))
			return
		}

		mu.Lock()
		if time.Now().After(hw.nextChangeAt) && hw.statusIdx < len(statuses)-1 {
			oldStatus := statuses[hw.statusIdx]
			hw.statusIdx++
			hw.updatedAt = time.Now()
			hw.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("status change", "from", oldStatus, "to", statuses[hw.statusIdx])
		}
		status := statuses[hw.statusIdx]
		updatedAt := hw.updatedAt
		mu.Unlock()

		// only homeworks updated since from_date are returned
		homeworks := []map[string]any{}
		if updatedAt.Unix() >= fromDate {
			homeworks = append(homeworks, map[string]any{
				"id":               1,
				"homework_name":    "student__hw05_final.zip",
				"status":           status,
				"reviewer_comment": "",
				"date_updated":     updatedAt.UTC().Format(time.RFC3339),
				"lesson_name":      "Final project",
			})
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"homeworks":    homeworks,
			"current_date": time.Now().Unix(),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
