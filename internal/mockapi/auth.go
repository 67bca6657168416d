package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenValidity = time.Hour

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleToken issues a signed JWT for known credentials.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.checkCredentials(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": req.Username,
		"iat": now.Unix(),
		"exp": now.Add(tokenValidity).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      signed,
		"token_type": "Bearer",
		"expires_in": int(tokenValidity.Seconds()),
	})
}

// requireAuth accepts basic credentials of a known user or a bearer JWT
// issued by the token endpoint.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		switch {
		case header == "":
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		case strings.HasPrefix(header, "Bearer "):
			if !s.verifyJWT(strings.TrimPrefix(header, "Bearer ")) {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
		default:
			username, password, ok := r.BasicAuth()
			if !ok || !s.checkCredentials(username, password) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) verifyJWT(token string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && parsed.Valid
}

func (s *Server) checkCredentials(username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username && u.password == password {
			return true
		}
	}
	return false
}
