package handler

import (
	"net/http"
	"strings"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type LoanHandler struct {
	circulation CirculationService
	binder      *binder
}

func NewLoanHandler(circulation CirculationService) *LoanHandler {
	return &LoanHandler{
		circulation: circulation,
		binder:      newBinder(),
	}
}

// List handles GET /loans, the transaction history
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size, err := paging(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	from, err := queryDate(r, "date_from")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	to, err := queryDate(r, "date_to")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	filter := domain.LoanFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Status:   r.URL.Query().Get("status"),
		DateFrom: from,
		DateTo:   to,
		Page:     page,
		PageSize: size,
	}
	result, err := h.circulation.ListLoans(r.Context(), AuthFrom(r.Context()), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, result)
}

// Issue handles POST /loans
func (h *LoanHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueLoanRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	loan, err := h.circulation.IssueLoan(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Created(w, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	loan, err := h.circulation.GetLoan(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, loan)
}

// Return handles POST /loans/{id}/return. The body is optional.
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var req domain.ReturnLoanRequest
	if err := h.binder.bindOptional(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	result, err := h.circulation.ReturnLoan(r.Context(), AuthFrom(r.Context()), id, &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Success(w, result)
}

// Fine handles GET /loans/{id}/fine?as_of=YYYY-MM-DD
func (h *LoanHandler) Fine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	asOf, err := queryDate(r, "as_of")
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	preview, err := h.circulation.PreviewReturn(r.Context(), AuthFrom(r.Context()), id, asOf)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, preview)
}

func (h *LoanHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.circulation.LoanStats(r.Context(), AuthFrom(r.Context()))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, stats)
}
