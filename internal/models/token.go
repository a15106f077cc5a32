package models

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body of both /login and /renew-token.
type TokenResponse struct {
	Token string `json:"token"`
}
