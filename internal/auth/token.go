package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mikanbox/relay/pkg/errors"
)

// Options controls token signing parameters.
type Options struct {
	Secret []byte
	Alg    string        // HS256/HS384/HS512 (default HS256)
	TTL    time.Duration // token lifetime (default 2h)
}

// DefaultOptions returns default signing options for a secret.
func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256", TTL: 2 * time.Hour}
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// HashToken returns the sha256 fingerprint of a token, suitable for
// storing instead of the token itself.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Generate issues a signed token for a subject.
func Generate(opts Options, subject string) (token string, tokenHash string, expireAt time.Time, err error) {
	if len(opts.Secret) == 0 {
		return "", "", time.Time{}, errors.New(errors.ErrorTypeValidation, "EMPTY_SECRET", "signing secret is required")
	}

	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", "", time.Time{}, err
	}
	if opts.TTL == 0 {
		opts.TTL = 2 * time.Hour
	}

	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := jwt.MapClaims{
		"sub": subject,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(opts.Secret)
	if err != nil {
		return "", "", time.Time{}, errors.Wrap(err, errors.ErrorTypeInternal, "SIGN_ERROR", "failed to sign token")
	}

	return signed, HashToken(signed), exp, nil
}

// Verify parses and validates a token, returning its claims.
func Verify(opts Options, token string) (*Claims, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "EMPTY_SECRET", "signing secret is required")
	}

	if _, err := signingMethod(opts.Alg); err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Only the HMAC family is accepted.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnauthorized, "INVALID_TOKEN", "token verification failed")
	}
	if !parsed.Valid {
		return nil, errors.New(errors.ErrorTypeUnauthorized, "INVALID_TOKEN", "token is not valid")
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errors.ErrorTypeUnauthorized, "INVALID_CLAIMS", "unexpected claims type")
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.TokenID = jti
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, errors.New(errors.ErrorTypeValidation, "UNSUPPORTED_ALG", "unsupported signing algorithm").
			WithDetails(alg)
	}
}
