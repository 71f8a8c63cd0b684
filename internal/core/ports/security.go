package ports

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs session tokens bound to a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}
