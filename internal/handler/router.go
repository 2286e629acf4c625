package handler

import (
	"github.com/gorilla/mux"

	"github.com/taskhive/task-service/internal/middleware"
	"github.com/taskhive/task-service/internal/token"
)

// NewRouter wires public and token-protected routes.
func NewRouter(h *Handler, tokens *token.Manager) *mux.Router {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/auth/signup", h.SignUp).Methods("POST")
	r.HandleFunc("/auth/signin", h.SignIn).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/tasks").Subrouter()
	authRouter.Use(middleware.Auth(tokens))
	authRouter.HandleFunc("", h.ListTasks).Methods("GET")
	authRouter.HandleFunc("", h.CreateTask).Methods("POST")
	authRouter.HandleFunc("/{id}", h.GetTask).Methods("GET")
	authRouter.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	authRouter.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	return r
}
