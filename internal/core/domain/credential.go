package domain

// Credential holds a login secret, stored apart from the Profile so the
// profile document never leaks a hash. A credential exists exactly as long
// as a profile with the same email does.
type Credential struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
