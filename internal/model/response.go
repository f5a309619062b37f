package model

type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type EmailCheckResponse struct {
	Exists bool   `json:"exists"`
	Email  string `json:"email"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

// APIResponse is the envelope used by the local JSON endpoints.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
