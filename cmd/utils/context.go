package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const ScopeKey contextKey = "scope"

// Scope identifies the authenticated caller and the business whose data
// every store call must be filtered by. It is threaded explicitly through
// handlers instead of living in a global.
type Scope struct {
	UserID     uint
	BusinessID uint
}

// Claims is the access-token payload: the standard claims plus the
// business the user belongs to.
type Claims struct {
	BusinessID uint `json:"business_id"`
	jwt.RegisteredClaims
}

func GetScope(r *http.Request) (Scope, error) {
	scope, ok := r.Context().Value(ScopeKey).(Scope)
	if !ok {
		return Scope{}, errors.New("scope not found in context")
	}
	return scope, nil
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.Replace(authHeader, "Bearer ", "", 1)

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("SECRET_KEY")), nil
		})

		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			http.Error(w, "Invalid user ID in token", http.StatusUnauthorized)
			return
		}
		if claims.BusinessID == 0 {
			http.Error(w, "Token missing business scope", http.StatusUnauthorized)
			return
		}

		scope := Scope{UserID: uint(userID), BusinessID: claims.BusinessID}
		ctx := context.WithValue(r.Context(), ScopeKey, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
