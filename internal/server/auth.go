package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

const accessTokenCookie = "accessToken"

// accessClaims is the payload of an access token. ID is the owner's id.
type accessClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type ownerKey struct{}

// requireOwner authenticates the caller from the accessToken cookie or a
// bearer token and stores the owner id in the request context.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	secret := []byte(s.cfg.AccessTokenSecret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := accessToken(r)
		if raw == "" {
			s.respondWithDomainError(w, r, domain.Unauthorized())
			return
		}

		var claims accessClaims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			s.logger.Debug("rejected access token", "err", err)
			s.respondWithDomainError(w, r, domain.Unauthorized())
			return
		}

		ownerID, ok := domain.ParseID(claims.ID)
		if !ok {
			s.respondWithDomainError(w, r, domain.Unauthorized())
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// ownerFrom returns the authenticated owner. Handlers behind requireOwner
// always have one.
func ownerFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ownerKey{}).(uuid.UUID)
	return id
}
