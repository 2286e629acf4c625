package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/task-service/internal/apperrors"
	"github.com/taskhive/task-service/internal/middleware"
	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// SignUp handles user registration
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, models.Response{Success: false, Message: "invalid request body"})
		return
	}

	user, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, models.Response{Success: true, Data: user})
}

// SignIn handles user authentication
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, models.Response{Success: false, Message: "invalid request body"})
		return
	}

	tokenString, user, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, models.Response{
		Success: true,
		Message: "login successful",
		Data: models.SignInResponse{
			Token: tokenString,
			ID:    user.ID,
			Email: user.Email,
		},
	})
}

// ListTasks returns the caller's tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		h.respond(w, http.StatusUnauthorized, models.Response{Success: false, Message: "unauthorized"})
		return
	}

	tasks, err := h.svc.ListTasks(r.Context(), claims.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, models.Response{Success: true, Data: tasks})
}

// CreateTask creates a task for the caller
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		h.respond(w, http.StatusUnauthorized, models.Response{Success: false, Message: "unauthorized"})
		return
	}

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, models.Response{Success: false, Message: "invalid request body"})
		return
	}

	task, err := h.svc.CreateTask(r.Context(), claims.UserID, req.Title, req.Description)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, models.Response{Success: true, Data: task})
}

// GetTask returns a single task owned by the caller
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		h.respond(w, http.StatusUnauthorized, models.Response{Success: false, Message: "unauthorized"})
		return
	}

	task, err := h.svc.GetTask(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, models.Response{Success: true, Data: task})
}

// UpdateTask applies a partial update to a task owned by the caller
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		h.respond(w, http.StatusUnauthorized, models.Response{Success: false, Message: "unauthorized"})
		return
	}

	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respond(w, http.StatusBadRequest, models.Response{Success: false, Message: "invalid request body"})
		return
	}

	task, err := h.svc.UpdateTask(r.Context(), claims.UserID, mux.Vars(r)["id"], patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, models.Response{Success: true, Data: task})
}

// DeleteTask removes a task owned by the caller
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		h.respond(w, http.StatusUnauthorized, models.Response{Success: false, Message: "unauthorized"})
		return
	}

	if err := h.svc.DeleteTask(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, models.Response{Success: true, Message: "task deleted"})
}

// Health reports service liveness and store reachability
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, models.Response{Success: true, Message: "ok"})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := apperrors.StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", err)
		message = "internal error"
	}
	h.respond(w, status, models.Response{Success: false, Message: message})
}
