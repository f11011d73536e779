package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/knjiznica/internal/imaging"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// BooksHandler handles catalog endpoints.
type BooksHandler struct {
	DB *sql.DB
}

type createBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// List handles GET /books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	availableOnly, err := queryBool(r, "available_only")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid available_only")
		return
	}

	page, err := queryPage(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	books, err := store.ListBooks(r.Context(), h.DB, availableOnly, r.URL.Query().Get("q"), page)
	if err != nil {
		storeError(w, r, err, "failed to list books")
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(books))
}

// Create handles POST /books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.ISBN = store.NormalizeISBN(req.ISBN)
	if req.Title == "" || req.Author == "" || req.ISBN == "" {
		jsonError(w, http.StatusBadRequest, "title, author and isbn required")
		return
	}

	book, err := store.CreateBook(r.Context(), h.DB, req.Title, req.Author, req.ISBN)
	if err != nil {
		storeError(w, r, err, "failed to create book")
		return
	}

	slog.Info("book added", "id", book.ID, "title", book.Title)
	jsonResponse(w, http.StatusCreated, book)
}

// Get handles GET /books/{id}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to get book")
		return
	}
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Update handles PUT /books/{id}. Only fields present in the body change.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var patch model.BookPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, f := range []*string{patch.Title, patch.Author} {
		if f != nil && strings.TrimSpace(*f) == "" {
			jsonError(w, http.StatusBadRequest, "fields may not be empty")
			return
		}
	}
	if patch.ISBN != nil && store.NormalizeISBN(*patch.ISBN) == "" {
		jsonError(w, http.StatusBadRequest, "invalid isbn")
		return
	}

	book, err := store.UpdateBook(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, r, err, "failed to update book")
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /books/{id}.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := store.DeleteBook(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "failed to delete book")
		return
	}

	slog.Info("book deleted", "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /books/{id}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	// Room for the multipart envelope on top of the image itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<16))

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "cover file required")
		return
	}
	defer file.Close()

	cover, err := imaging.ProcessCover(file)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		jsonError(w, http.StatusBadRequest, "cover must be JPEG or PNG")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cover image")
		return
	}

	if err := store.SetBookCover(r.Context(), h.DB, id, cover.Data, cover.MIME); err != nil {
		storeError(w, r, err, "failed to save cover")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "cover uploaded",
		"width":   cover.Width,
		"height":  cover.Height,
	})
}

// GetCover handles GET /books/{id}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to get cover")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// GetHistory handles GET /books/{id}/history.
func (h *BooksHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	history, err := store.GetBookHistory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to get book history")
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(history))
}
