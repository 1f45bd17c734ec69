package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type PassHandler struct {
	passes PassService
	binder *binder
}

func NewPassHandler(passes PassService) *PassHandler {
	return &PassHandler{
		passes: passes,
		binder: newBinder(),
	}
}

func (h *PassHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, size, err := paging(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	filter := domain.PassFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Status:   r.URL.Query().Get("status"),
		Page:     page,
		PageSize: size,
	}
	result, err := h.passes.SearchPasses(r.Context(), AuthFrom(r.Context()), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, result)
}

func (h *PassHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req domain.IssuePassRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	pass, err := h.passes.IssuePass(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Created(w, pass)
}

func (h *PassHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.passes.Suspend)
}

func (h *PassHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.passes.Activate)
}

func (h *PassHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, domain.AuthContext, int64) (*domain.LibraryPass, error)) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	pass, err := fn(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, pass)
}
