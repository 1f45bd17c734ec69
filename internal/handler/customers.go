package handler

import (
	"net/http"
	"strings"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type CustomerHandler struct {
	membership   MembershipService
	reservations ReservationService
	binder       *binder
}

func NewCustomerHandler(membership MembershipService, reservations ReservationService) *CustomerHandler {
	return &CustomerHandler{
		membership:   membership,
		reservations: reservations,
		binder:       newBinder(),
	}
}

func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, size, err := paging(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	filter := domain.CustomerFilter{
		Query:          strings.TrimSpace(r.URL.Query().Get("q")),
		MembershipType: r.URL.Query().Get("membership_type"),
		Page:           page,
		PageSize:       size,
	}
	result, err := h.membership.SearchCustomers(r.Context(), AuthFrom(r.Context()), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, result)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	customer, err := h.membership.AddCustomer(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Created(w, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	customer, err := h.membership.GetCustomer(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if err := h.membership.DeleteCustomer(r.Context(), AuthFrom(r.Context()), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Message(w, "Customer deleted")
}

func (h *CustomerHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	result, err := h.membership.IsEligibleToBorrow(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, result)
}

func (h *CustomerHandler) Fines(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	fines, err := h.membership.ListFines(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, fines)
}

func (h *CustomerHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	reservations, err := h.reservations.ListReservationsForCustomer(r.Context(), AuthFrom(r.Context()), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, reservations)
}
