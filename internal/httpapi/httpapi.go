package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/service"
	"yarey/backend/internal/store"
	"yarey/backend/internal/voucher"
)

var validate = validator.New()

func init() {
	// Amount is a struct; expose it to numeric tags such as gte=0.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(domain.Amount); ok {
			return v.Float64()
		}
		return nil
	}, domain.Amount{})
}

type API struct {
	service       *service.Service
	allowedOrigin string
}

func New(svc *service.Service, allowedOrigin string) *API {
	return &API{
		service:       svc,
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.withMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tiers", a.handleTiers)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", a.handleListClients)
			r.Post("/", a.handleCreateClient)
			r.Post("/sync", a.handleSyncClients)
			r.Delete("/{id}", a.handleDeleteClient)
			r.Get("/{id}/loyalty", a.handleClientLoyalty)
		})

		r.Post("/checkout", a.handleCheckout)

		r.Route("/vouchers", func(r chi.Router) {
			r.Get("/", a.handleListVouchers)
			r.Post("/", a.handleIssueVoucher)
			r.Post("/validate", a.handleValidateVoucher)
			r.Post("/{id}/status", a.handleVoucherStatus)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", a.handleListStaff)
			r.Post("/", a.handleUpsertStaff)
			r.Delete("/{id}", a.handleDeactivateStaff)
		})

		r.Get("/treatments", a.handleListTreatments)
		r.Post("/treatments", a.handleUpsertTreatment)

		r.Get("/settings/outsource-rate", a.handleGetOutsourceRate)
		r.Put("/settings/outsource-rate", a.handleSetOutsourceRate)

		r.Route("/payroll/{month}", func(r chi.Router) {
			r.Get("/", a.handlePayroll)
			r.Get("/export.xlsx", a.handlePayrollExport)
			r.Get("/payslips/{staffID}", a.handlePayslip)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", a.handleListExpenses)
			r.Post("/", a.handleCreateExpense)
			r.Delete("/{id}", a.handleDeleteExpense)
		})

		r.Get("/reports/daily-closing", a.handleDailyClosing)
	})

	return r
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(startedAt)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// writeServiceError maps domain sentinels to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voucher.ErrAlreadyApplied):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, voucher.ErrExpired):
		writeError(w, http.StatusGone, err)
	case errors.Is(err, voucher.ErrNotFound), errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, voucher.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrSyncInProgress):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, voucher.ErrInvalidIssue),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

// decodeValid decodes the body into dest and runs its validate tags. It
// writes the error response itself and reports false on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := decodeJSON(r, dest); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx messages may carry driver or file details; clients get a generic text.
	msg := err.Error()
	if status >= 500 {
		log.Error().Err(err).Int("status", status).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFile(w http.ResponseWriter, contentType string, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
