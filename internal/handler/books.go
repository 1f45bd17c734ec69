package handler

import (
	"net/http"
	"strings"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type BookHandler struct {
	catalog      CatalogService
	reservations ReservationService
	binder       *binder
}

func NewBookHandler(catalog CatalogService, reservations ReservationService) *BookHandler {
	return &BookHandler{
		catalog:      catalog,
		reservations: reservations,
		binder:       newBinder(),
	}
}

func bookFilter(r *http.Request) (domain.BookFilter, error) {
	page, size, err := paging(r)
	if err != nil {
		return domain.BookFilter{}, err
	}
	q := r.URL.Query()
	return domain.BookFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Genre:    strings.TrimSpace(q.Get("genre")),
		Page:     page,
		PageSize: size,
	}, nil
}

// Search handles GET /books
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := bookFilter(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	page, err := h.catalog.SearchBooks(r.Context(), AuthFrom(r.Context()), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, page)
}

// Browse handles GET /books/browse
func (h *BookHandler) Browse(w http.ResponseWriter, r *http.Request) {
	filter, err := bookFilter(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	page, err := h.catalog.BrowseBooks(r.Context(), AuthFrom(r.Context()), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, page)
}

func (h *BookHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.ListGenres(r.Context(), AuthFrom(r.Context()))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, genres)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	book, err := h.catalog.AddBook(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Created(w, book)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	detail, err := h.catalog.GetBook(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, detail)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var req domain.UpdateBookRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	book, err := h.catalog.UpdateBook(r.Context(), AuthFrom(r.Context()), id, &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Success(w, book)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if err := h.catalog.DeleteBook(r.Context(), AuthFrom(r.Context()), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Message(w, "Book deleted")
}

// Reservations handles GET /books/{id}/reservations
func (h *BookHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	reservations, err := h.reservations.ListReservationsForBook(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, reservations)
}
