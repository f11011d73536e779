package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// SystemHandler serves health, statistics and the ledger audit.
type SystemHandler struct {
	DB *sql.DB
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		jsonError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats handles GET /stats.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStatistics(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to get statistics")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

type auditResponse struct {
	Consistent bool                `json:"consistent"`
	Issues     []model.LedgerIssue `json:"issues"`
}

// Audit handles GET /audit.
func (h *SystemHandler) Audit(w http.ResponseWriter, r *http.Request) {
	issues, err := store.AuditLedger(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to audit ledger")
		return
	}
	jsonResponse(w, http.StatusOK, auditResponse{
		Consistent: len(issues) == 0,
		Issues:     nonNil(issues),
	})
}
