package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": a.service.Tiers()})
}

func (a *API) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := a.service.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (a *API) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientCreateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	client, err := a.service.CreateClient(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"client": client})
}

func (a *API) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleClientLoyalty(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.ClientLoyalty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleSyncClients(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.SyncClients(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrPartialWrite) {
			writeJSON(w, http.StatusMultiStatus, map[string]any{
				"report": report,
				"error":  err.Error(),
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if !decodeValid(w, r, &req) {
		return
	}
	resp, err := a.service.Checkout(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := a.service.ListVouchers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vouchers": vouchers})
}

func (a *API) handleIssueVoucher(w http.ResponseWriter, r *http.Request) {
	var req domain.VoucherIssueRequest
	if !decodeValid(w, r, &req) {
		return
	}
	v, err := a.service.IssueVoucher(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"voucher": v})
}

func (a *API) handleValidateVoucher(w http.ResponseWriter, r *http.Request) {
	var req domain.VoucherValidateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	v, err := a.service.ValidateVoucherCode(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voucher": v})
}

func (a *API) handleVoucherStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.VoucherStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}
	v, err := a.service.TransitionVoucher(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voucher": v})
}

func (a *API) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := a.service.ListStaff(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (a *API) handleUpsertStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffUpsertRequest
	if !decodeValid(w, r, &req) {
		return
	}
	staff, err := a.service.UpsertStaff(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (a *API) handleDeactivateStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := a.service.DeactivateStaff(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (a *API) handleListTreatments(w http.ResponseWriter, r *http.Request) {
	treatments, err := a.service.ListTreatments(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"treatments": treatments})
}

func (a *API) handleUpsertTreatment(w http.ResponseWriter, r *http.Request) {
	var req domain.TreatmentUpsertRequest
	if !decodeValid(w, r, &req) {
		return
	}
	treatment, err := a.service.UpsertTreatment(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"treatment": treatment})
}

func (a *API) handleGetOutsourceRate(w http.ResponseWriter, r *http.Request) {
	rate, err := a.service.OutsourceRate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rate": rate})
}

func (a *API) handleSetOutsourceRate(w http.ResponseWriter, r *http.Request) {
	var req domain.OutsourceRateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	rate, err := a.service.SetOutsourceRate(r.Context(), req.Rate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rate": rate})
}

func (a *API) handlePayroll(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.MonthlyPayroll(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handlePayrollExport(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	body, err := a.service.PayrollWorkbook(r.Context(), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeFile(w, contentTypeXLSX, fmt.Sprintf("payroll-%s.xlsx", month), body)
}

func (a *API) handlePayslip(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	staffID := chi.URLParam(r, "staffID")
	body, err := a.service.Payslip(r.Context(), month, staffID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeFile(w, contentTypePDF, fmt.Sprintf("payslip-%s-%s.pdf", month, staffID), body)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ListExpenses(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseCreateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	expense, err := a.service.CreateExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDailyClosing answers JSON, or the clipboard text with ?format=text.
func (a *API) handleDailyClosing(w http.ResponseWriter, r *http.Request) {
	closing, err := a.service.DailyClosing(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(closing.Text()))
		return
	}
	writeJSON(w, http.StatusOK, closing)
}
