package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faspmgr/internal/manager"
	"faspmgr/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Start(req types.TransferRequest) (types.TransferStatus, error)
	List() []types.TransferStatus
	Get(id string) (types.TransferStatus, error)
	Cancel(id string) error
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the router. feed may be nil, in which case /events is not
// mounted.
func NewMux(svc Service, feed http.Handler) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, logging, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/transfers", startTransfer(svc))

	r.Get("/transfers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.TransfersResponse{Transfers: svc.List()})
	})

	r.Get("/transfers/{id}", func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	r.Delete("/transfers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.Cancel(id); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		st, err := svc.Get(id)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, st)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	if feed != nil {
		r.Get("/events", feed.ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shutting down"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// startTransfer godoc
// @Summary      Start a transfer
// @Description  Launches the transfer executable with the given arguments and returns immediately.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request  body      types.TransferRequest  true  "Transfer request"
// @Success      202      {object}  types.TransferStatus
// @Failure      400      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /transfers [post]
func startTransfer(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(req.Args) == 0 {
			writeJSONError(w, http.StatusBadRequest, "args are required")
			return
		}
		st, err := svc.Start(req)
		if err != nil {
			status := statusFor(err)
			if manager.IsTooBusy(err) {
				IncrementBackpressure("active_limit")
			}
			writeJSONError(w, status, err.Error())
			return
		}
		w.Header().Set("Location", "/transfers/"+st.ID)
		writeJSON(w, http.StatusAccepted, st)
	}
}
