package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(userID int64, username string, role string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey  string
	expiration time.Duration
	tokenAuth  *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, expiration time.Duration) Service {
	return &JWTService{
		secretKey:  secretKey,
		expiration: expiration,
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID int64, username string, role string) (string, int64, error) {
	expiresAt := time.Now().Add(j.expiration).Unix()

	claims := map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"role":     role,
		"type":     "access",
		"exp":      expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}
