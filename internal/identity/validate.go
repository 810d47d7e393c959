package identity

import (
	"strings"

	"music-platform/internal/validate"
)

// Tags for user input. bcrypt ignores everything past 72 bytes, so longer
// passwords are rejected instead of silently truncated.
const (
	nameRule     = "min=3"
	emailRule    = "required,email"
	passwordRule = "min=6,maxbytes=72"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var("name", name, nameRule); err != nil {
		return "", err
	}
	return name, nil
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if err := validate.Var("email", email, emailRule); err != nil {
		return "", err
	}
	return email, nil
}

func validatePassword(password string) error {
	return validate.Var("password", password, passwordRule)
}
