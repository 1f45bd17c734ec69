package handler

import (
	"net/http"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type ReservationHandler struct {
	reservations ReservationService
	binder       *binder
}

func NewReservationHandler(reservations ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		binder:       newBinder(),
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ReserveRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	reservation, err := h.reservations.Reserve(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Created(w, reservation)
}

// SetStatus handles PUT /reservations/{id}/status
func (h *ReservationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var req domain.UpdateReservationStatusRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	reservation, err := h.reservations.SetStatus(r.Context(), AuthFrom(r.Context()), id, req.Status)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, reservation)
}
