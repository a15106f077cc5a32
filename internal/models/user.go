package models

// User is the profile returned by GET /me.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
}

// AdminUserInfo is one row of GET /admin/users.
type AdminUserInfo struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	ListCount int    `json:"listCount"`
	NoteCount int    `json:"noteCount"`
}
