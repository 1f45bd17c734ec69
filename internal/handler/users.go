package handler

import (
	"net/http"
	"strings"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type UserHandler struct {
	users  UserService
	binder *binder
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{
		users:  users,
		binder: newBinder(),
	}
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, size, err := paging(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	filter := domain.UserFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Role:     r.URL.Query().Get("role"),
		Page:     page,
		PageSize: size,
	}
	result, err := h.users.SearchUsers(r.Context(), AuthFrom(r.Context()), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, result)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, withoutPassword(req))
		return
	}
	user, err := h.users.CreateUser(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, withoutPassword(req))
		return
	}
	response.Created(w, user)
}

// the submitted password is never echoed back
func withoutPassword(req domain.CreateUserRequest) domain.CreateUserRequest {
	req.Password = ""
	return req
}

func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *UserHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	user, err := h.users.SetActive(r.Context(), AuthFrom(r.Context()), id, active)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, user)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), AuthFrom(r.Context()))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), AuthFrom(r.Context()), &req)
	if err != nil {
		response.FromErrorWithData(w, r, err, req)
		return
	}
	response.Success(w, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := h.binder.bind(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	if err := h.users.ChangePassword(r.Context(), AuthFrom(r.Context()), &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Message(w, "Password changed")
}
