package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Issuer signs HS256 bearer tokens for the mock backend.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// Claims is what the mock backend needs back out of a token it issued.
type Claims struct {
	Subject   string
	Username  string
	Role      string
	ExpiresAt time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("[NewIssuer] secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewIssuer] ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, issuer: "yenikoza"}, nil
}

// Issue returns a signed token and its expiry instant.
func (i *Issuer) Issue(subject, username, role string) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(i.ttl)
	claims := jwtlib.MapClaims{
		"iss":      i.issuer,
		"sub":      subject,
		"username": username,
		"role":     role,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
		"jti":      uuid.New().String(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Issue] failed to sign token")
	}
	return signed, time.Unix(exp.Unix(), 0).UTC(), nil
}

// Verify checks the signature and expiry of a token issued by i.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(i.issuer),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Verify] invalid token")
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[Verify] error extracting claims")
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	exp, _ := claims.GetExpirationTime()

	c := &Claims{Subject: sub, Username: username, Role: role}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
