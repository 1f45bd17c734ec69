package handler

import (
	"net/http"

	"github.com/segyhp/library-engine/pkg/response"
)

type DashboardHandler struct {
	dashboard DashboardService
}

func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context(), AuthFrom(r.Context()))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, stats)
}
