package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenLifetime is how long an issued session token stays valid.
// There is no refresh or revocation; logout is client-side.
const TokenLifetime = 7 * 24 * time.Hour

// Identity is the result of inspecting a request's bearer token: a
// username for a valid token, Anonymous for everything else.
type Identity struct {
	Username string
}

// Anonymous is the identity of requests without a usable token.
var Anonymous = Identity{}

func (id Identity) Authenticated() bool { return id.Username != "" }

type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret)}
}

// GenerateToken creates a signed session token for the username.
func (j *JWTAuth) GenerateToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(TokenLifetime).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Verify returns the identity embedded in the token. A missing,
// malformed, tampered, or expired token degrades to Anonymous rather
// than an error; the handlers treat both cases uniformly.
func (j *JWTAuth) Verify(tokenStr string) Identity {
	if tokenStr == "" {
		return Anonymous
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil || !token.Valid {
		return Anonymous
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Anonymous
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return Anonymous
	}
	return Identity{Username: username}
}

// Middleware resolves the request's bearer token and attaches the
// resulting identity to the context. It never rejects a request.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := Anonymous

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			identity = j.Verify(parts[1])
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity extracts the identity from the request context.
func GetIdentity(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
