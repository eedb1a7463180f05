package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type JWT struct {
	secret []byte
	ttl    time.Duration
}

// NewJWT builds a token service. A ttl of zero issues tokens without an exp
// claim (long-lived sessions).
func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

type Claims struct {
	Email  string
	UserID uint64
	Role   Role
}

func (j *JWT) Sign(u *User) (string, error) {
	role, err := ParseRole(u.Role)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":  u.Email,
		"uid":  u.ID,
		"role": role.String(),
		"iat":  time.Now().Unix(),
	}
	if j.ttl > 0 {
		claims["exp"] = time.Now().Add(j.ttl).Unix()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Claims, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, ErrInvalidToken
	}

	// jwt MapClaims numbers are float64
	uidf, ok := mc["uid"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	roleStr, ok := mc["role"].(string)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	role, err := ParseRole(roleStr)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Email: sub, UserID: uint64(uidf), Role: role}, nil
}
