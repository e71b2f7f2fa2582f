package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/baechuer/account-service/internal/domain"
)

// JWTSigner issues and verifies every token the service hands out
// (verification, reset and session). Tokens are told apart by purpose.
type JWTSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type tokenClaims struct {
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Sign ignores c.ExpiresAt; expiry is now+ttl.
func (s *JWTSigner) Sign(c domain.Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Email:   c.Email,
		Role:    string(c.Role),
		Purpose: string(c.Purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry. Every failure is
// reported as token_invalid.
func (s *JWTSigner) Verify(token string) (domain.Claims, error) {
	if token == "" {
		return domain.Claims{}, domain.ErrTokenInvalid()
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Claims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Purpose == "" {
		return domain.Claims{}, domain.ErrTokenInvalid()
	}

	return domain.Claims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		Purpose:   domain.TokenPurpose(claims.Purpose),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyPurpose is Verify plus a purpose check.
func (s *JWTSigner) VerifyPurpose(token string, want domain.TokenPurpose) (domain.Claims, error) {
	c, err := s.Verify(token)
	if err != nil {
		return domain.Claims{}, err
	}
	if c.Purpose != want {
		return domain.Claims{}, domain.ErrTokenInvalid()
	}
	return c, nil
}
