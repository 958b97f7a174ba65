package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/internal/recommend"
)

// newRouter builds the HTTP API around a catalog store and a ready engine.
func newRouter(store catalog.Store, engine *recommend.Engine) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/recommend", handleRecommend(engine))
	r.Get("/v1/mountains", handleMountains(store))

	return r
}

func handleRecommend(engine *recommend.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cs model.ConstraintSet
		if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := engine.Recommend(r.Context(), cs)
		if err != nil {
			var perr *model.ConstraintParseError
			if errors.As(err, &perr) {
				respondError(w, http.StatusBadRequest, perr.Error())
				return
			}
			zap.L().Error("recommend request failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, res)
	}
}

func handleMountains(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.Filter{
			State: r.URL.Query().Get("state"),
			Pass:  r.URL.Query().Get("pass"),
		}

		mountains, err := store.ListMountains(r.Context(), filter)
		if err != nil {
			zap.L().Error("mountain listing failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"count":     len(mountains),
			"mountains": mountains,
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("writing response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
