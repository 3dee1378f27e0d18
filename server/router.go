package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rfpoker-export/server/compiler"
	"rfpoker-export/server/handlog"
	"rfpoker-export/server/table"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func Router(ex *exporter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"ok": true, "db": false, "delivery": ex.client.Enabled()}
		if ex.db != nil {
			ctx, cancel := withTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp["db"] = ex.db.Ping(ctx) == nil
		}
		writeJSON(w, resp)
	})

	// Compile a posted snapshot. Nothing is stored or delivered.
	r.Post("/api/compile", func(w http.ResponseWriter, r *http.Request) {
		var snap table.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		rep := compiler.Compile(compiler.Input{TableID: snap.TableID, Players: snap.Players, History: snap.History()}, ex.opts)
		if rep == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, rep)
	})

	r.Route("/api/tables/{id}", func(r chi.Router) {
		r.Use(requireDB(ex))

		r.Post("/hands", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Players []table.Player   `json:"players"`
				Hand    *handlog.HandLog `json:"hand"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
			if body.Hand == nil {
				http.Error(w, "hand required", http.StatusBadRequest)
				return
			}
			id, err := recordHand(r.Context(), ex.db, tableID(r), body.Players, body.Hand)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSONStatus(w, http.StatusCreated, map[string]any{"id": id, "hand_number": body.Hand.Table.HandNumber})
		})

		r.Get("/report", func(w http.ResponseWriter, r *http.Request) {
			players, hist, err := loadTable(r.Context(), ex.db, tableID(r))
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			rep := compiler.Compile(compiler.Input{TableID: tableID(r), Players: players, History: hist}, ex.opts)
			if rep == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeJSON(w, rep)
		})

		r.Post("/export", func(w http.ResponseWriter, r *http.Request) {
			rep, view, err := ex.exportStored(r.Context(), tableID(r))
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if rep == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeJSONStatus(w, http.StatusAccepted, map[string]any{"report": rep, "delivery": view})
		})

		r.Get("/deliveries", func(w http.ResponseWriter, r *http.Request) {
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			rows, err := ex.db.RecentDeliveries(r.Context(), tableID(r), limit)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, rows)
		})
	})

	return r
}

func tableID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func requireDB(ex *exporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ex.db == nil {
				http.Error(w, "no database configured", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
