package authclient

// User is the public identity shape returned by the auth endpoints. The
// password hash and session internals never cross the wire.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned by the register, login, refresh and me endpoints.
type AuthResponse struct {
	User User `json:"user"`
}

// OKResponse is returned by endpoints whose only outcome is success, such
// as logout.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the wire shape of every non-2xx response. Field is only
// set for validation failures so forms can highlight the offending input.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
}

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /api/auth/login. Login accepts a
// username or an email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
