package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accountabro/backend/internal/ctxkeys"
)

// ProfileHeader carries the caller's profile id, set by the upstream
// identity provider after authentication.
const ProfileHeader = "X-Profile-ID"

// Identity resolves the calling profile. With an empty secret the profile id
// is taken from ProfileHeader; otherwise a bearer token signed with the
// secret is required and its subject is the profile id.
type Identity struct {
	secret []byte
}

func NewIdentity(secret string) *Identity {
	return &Identity{secret: []byte(secret)}
}

// RequireProfile rejects requests without a profile identity and stores it
// in the request context.
func (id *Identity) RequireProfile(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := id.profileID(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := ctxkeys.WithProfileID(r.Context(), profileID)
		next(w, r.WithContext(ctx))
	}
}

func (id *Identity) profileID(r *http.Request) (string, error) {
	if len(id.secret) == 0 {
		profileID := strings.TrimSpace(r.Header.Get(ProfileHeader))
		if profileID == "" {
			return "", errors.New("missing " + ProfileHeader + " header")
		}
		return profileID, nil
	}

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", errors.New("missing bearer token")
	}
	profileID, err := VerifyProfileToken(string(id.secret), raw)
	if err != nil {
		return "", errors.New("invalid bearer token")
	}
	return profileID, nil
}

// SignProfileToken mints an HS256 token whose subject is profileID.
func SignProfileToken(secret, profileID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyProfileToken checks signature and expiry and returns the subject.
func VerifyProfileToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
