package domain

// Account roles, carried in session claims.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
