package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rotaviva/stops-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP resolution API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/api", func(r chi.Router) {
			r.Post("/process", handleProcess(env))
			r.Get("/reverse", handleReverse(env))
			r.Get("/parcel/lookup", handleParcelLookup(env))
			r.Get("/gyn/lot", handleGynLot(env))
			r.Get("/jobs", handleListJobs(env))
			r.Get("/jobs/{id}", handleGetJob(env))
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// handleProcess resolves a batch of rows posted as JSON and returns the
// resolved stops synchronously along with the saved job id.
func handleProcess(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Rows []model.RawAddressRow `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Rows) == 0 {
			writeError(w, http.StatusBadRequest, "rows is required")
			return
		}

		start := time.Now()
		results := env.Resolver.ResolveAll(r.Context(), req.Rows, nil)
		elapsed := time.Since(start)

		job, err := env.History.SaveJob(r.Context(), "api", results, elapsed)
		if err != nil {
			zap.L().Error("serve: save job failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save job failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"job_id":  job.ID,
			"results": results,
		})
	}
}

// handleReverse resolves a coordinate to its nearest address via the
// geocoding provider.
func handleReverse(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, "lat and lng query params are required")
			return
		}

		items, err := env.Geocoder.Reverse(r.Context(), lat, lng)
		if err != nil {
			zap.L().Error("serve: reverse geocode failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "reverse geocode failed")
			return
		}

		resp := map[string]any{"lat": lat, "lng": lng, "label": "", "position": nil}
		if len(items) > 0 {
			item := items[0]
			label := item.Title
			if label == "" {
				label = item.Address.Label
			}
			state := item.Address.StateCode
			if state == "" {
				state = item.Address.State
			}
			neighborhood := item.Address.District
			if neighborhood == "" {
				neighborhood = item.Address.Subdistrict
			}
			resp["label"] = label
			resp["position"] = item.Position
			resp["address"] = map[string]string{
				"street":       item.Address.Street,
				"number":       item.Address.HouseNumber,
				"neighborhood": neighborhood,
				"city":         item.Address.City,
				"state":        state,
				"postal_code":  item.Address.PostalCode,
				"country":      item.Address.CountryName,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleGynLot proxies a point-intersect lot query to the neighboring
// municipality's ArcGIS service.
func handleGynLot(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, "lat and lng query params are required")
			return
		}

		match, err := env.Lots.Lookup(r.Context(), lat, lng, r.URL.Query().Get("layer"))
		if err != nil {
			zap.L().Error("serve: arcgis lot lookup failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "lot lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

// handleParcelLookup answers a single point-in-polygon query.
func handleParcelLookup(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, "lat and lng query params are required")
			return
		}
		if !env.Parcels.Available() {
			writeError(w, http.StatusServiceUnavailable, "parcel dataset not loaded")
			return
		}
		writeJSON(w, http.StatusOK, env.Parcels.Lookup(lat, lng))
	}
}

func handleListJobs(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		jobs, err := env.History.ListJobs(r.Context(), limit)
		if err != nil {
			zap.L().Error("serve: list jobs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list jobs failed")
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func handleGetJob(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := env.History.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			zap.L().Error("serve: get job failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get job failed")
			return
		}
		if job == nil {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
