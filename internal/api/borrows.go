package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/knjiznica/internal/store"
)

// BorrowsHandler handles the borrow ledger endpoints.
type BorrowsHandler struct {
	DB *sql.DB
}

type createBorrowRequest struct {
	BookID   int64 `json:"book_id"`
	MemberID int64 `json:"member_id"`
}

// Create handles POST /borrow.
func (h *BorrowsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBorrowRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BookID <= 0 || req.MemberID <= 0 {
		jsonError(w, http.StatusBadRequest, "book_id and member_id are required and must be positive")
		return
	}

	borrow, err := store.CreateBorrow(r.Context(), h.DB, req.BookID, req.MemberID)
	if err != nil {
		storeError(w, r, err, "failed to create borrow")
		return
	}

	slog.Info("book borrowed", "borrow", borrow.ID,
		"book", borrow.BookTitle, "member", borrow.MemberName)
	jsonResponse(w, http.StatusCreated, borrow)
}

// Return handles POST /borrow/{id}/return.
func (h *BorrowsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid borrow id")
		return
	}

	borrow, err := store.ReturnBorrow(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to return borrow")
		return
	}

	slog.Info("book returned", "borrow", borrow.ID,
		"book", borrow.BookTitle, "member", borrow.MemberName)
	jsonResponse(w, http.StatusOK, borrow)
}

// List handles GET /borrow.
func (h *BorrowsHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "active_only")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid active_only")
		return
	}

	page, err := queryPage(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	borrows, err := store.ListBorrows(r.Context(), h.DB, activeOnly, page)
	if err != nil {
		storeError(w, r, err, "failed to list borrows")
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(borrows))
}

// Get handles GET /borrow/{id}.
func (h *BorrowsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid borrow id")
		return
	}

	borrow, err := store.GetBorrow(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to get borrow")
		return
	}
	if borrow == nil {
		jsonError(w, http.StatusNotFound, "borrow not found")
		return
	}
	jsonResponse(w, http.StatusOK, borrow)
}

// MemberHistory handles GET /borrow/member/{member_id}.
func (h *BorrowsHandler) MemberHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "member_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	history, err := store.GetMemberHistory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to get member history")
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(history))
}
