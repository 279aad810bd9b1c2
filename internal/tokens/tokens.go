package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrWrongType = errors.New("unexpected token type")

type AccessClaims struct {
	Email      string `json:"email"`
	Superadmin bool   `json:"is_superadmin"`
	Type       string `json:"type"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Issuer signs both token kinds. Access and refresh tokens use separate
// secrets.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func (i Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i Issuer) Access(userID, email string, superadmin bool) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.AccessTTL)
	claims := AccessClaims{
		Email:      email,
		Superadmin: superadmin,
		Type:       TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Refresh returns the signed token together with its jti.
func (i Issuer) Refresh(userID string) (token, jti string, exp time.Time, err error) {
	now := i.now()
	exp = now.Add(i.RefreshTTL)
	jti = uuid.NewString()
	claims := RefreshClaims{
		Type: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.RefreshSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, exp, nil
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(secret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Type != TypeAccess {
		return nil, ErrWrongType
	}
	return &claims, nil
}

func RefreshClaimsFromToken(tokenStr string, secret []byte) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(secret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Type != TypeRefresh {
		return nil, ErrWrongType
	}
	return &claims, nil
}
