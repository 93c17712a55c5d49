package auth

// LoginResult is the verified identity payload the backend returns on a
// successful authentication.
type LoginResult struct {
	Token       string   `json:"token"`
	RoleName    string   `json:"role_Name"`
	UserID      string   `json:"id"`
	Permissions []string `json:"permissions"`
}

// Profile describes the authenticated user's account details.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	RoleName string `json:"role_Name"`
}
