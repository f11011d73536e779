package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/knjiznica/internal/assistant"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB) http.Handler {
	mux := http.NewServeMux()

	booksHandler := &BooksHandler{DB: db}
	membersHandler := &MembersHandler{DB: db}
	borrowsHandler := &BorrowsHandler{DB: db}
	systemHandler := &SystemHandler{DB: db}
	assistantHandler := &AssistantHandler{Registry: assistant.NewRegistry(db)}

	mux.HandleFunc("GET /health", systemHandler.Health)
	mux.HandleFunc("GET /stats", systemHandler.Stats)
	mux.HandleFunc("GET /audit", systemHandler.Audit)

	// Catalog.
	mux.HandleFunc("POST /books", booksHandler.Create)
	mux.HandleFunc("GET /books", booksHandler.List)
	mux.HandleFunc("GET /books/{id}", booksHandler.Get)
	mux.HandleFunc("PUT /books/{id}", booksHandler.Update)
	mux.HandleFunc("DELETE /books/{id}", booksHandler.Delete)
	mux.HandleFunc("PUT /books/{id}/cover", booksHandler.UploadCover)
	mux.HandleFunc("GET /books/{id}/cover", booksHandler.GetCover)
	mux.HandleFunc("GET /books/{id}/history", booksHandler.GetHistory)

	// Members.
	mux.HandleFunc("POST /members", membersHandler.Create)
	mux.HandleFunc("GET /members", membersHandler.List)
	mux.HandleFunc("GET /members/{id}", membersHandler.Get)
	mux.HandleFunc("PUT /members/{id}", membersHandler.Update)
	mux.HandleFunc("DELETE /members/{id}", membersHandler.Delete)

	// Borrow ledger.
	mux.HandleFunc("POST /borrow", borrowsHandler.Create)
	mux.HandleFunc("GET /borrow", borrowsHandler.List)
	mux.HandleFunc("GET /borrow/{id}", borrowsHandler.Get)
	mux.HandleFunc("POST /borrow/{id}/return", borrowsHandler.Return)
	mux.HandleFunc("GET /borrow/member/{member_id}", borrowsHandler.MemberHistory)

	// Assistant tools.
	mux.HandleFunc("GET /assistant/tools", assistantHandler.List)
	mux.HandleFunc("POST /assistant/tools/{name}", assistantHandler.Invoke)

	return LoggingMiddleware(CORSMiddleware(mux))
}
