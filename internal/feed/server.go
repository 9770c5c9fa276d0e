package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"github.com/roach88/restosync/internal/restaurant"
)

// NewHandler returns the feed's HTTP handler, wrapped in CORS handling for
// the given origins. An empty list allows every origin.
func NewHandler(src Source, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	list := listHandler(src)
	mux.HandleFunc("GET /restaurants", list)
	mux.HandleFunc("GET /restaurants/{$}", list)
	mux.HandleFunc("GET /restaurants/{id}", getHandler(src))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	return c.Handler(mux)
}

func listHandler(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := src.All(r.Context())
		if err != nil {
			slog.Error("list restaurants failed", "error", err)
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []restaurant.Restaurant{}
		}
		writeJSON(w, records)
	}
}

func getHandler(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		rec, err := src.Get(r.Context(), id)
		if restaurant.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			slog.Error("get restaurant failed", "restaurant_id", id, "error", err)
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rec)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	slog.Info("feed server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("feed server stopped")
	return nil
}
