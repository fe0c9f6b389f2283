package auth

import "errors"

// User-facing login messages.
const (
	LoginFailedMessage = "Giriş başarısız"
	ServerErrorMessage = "Sunucu hatası. Lütfen tekrar deneyin."
)

var (
	InvalidCredentialsErr = errors.New("invalid credentials")
	MissingTokenErr       = errors.New("login response carried no token")
	UsernameRequiredErr   = errors.New("username required")
	PasswordRequiredErr   = errors.New("password required")
)

// LoginError is a failed login. Message is safe to show to the operator.
type LoginError struct {
	Message string
	Status  int
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}
