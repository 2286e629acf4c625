package models

// CredentialsRequest is the body for sign-up and sign-in
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest is the body for task creation
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SignInResponse carries the session token alongside the caller's identity
type SignInResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
