package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"apibdd/pkg/logging"
)

const (
	defaultTokenEndpoint = "/api/auth/token"
	// defaultTokenValidity is assumed when a token carries no readable expiry.
	defaultTokenValidity = 60 * time.Minute
)

// bearerToken is a token plus its expiry.
type bearerToken struct {
	token  string
	expiry time.Time
}

// newBearerToken wraps a token string. When the token parses as a JWT its exp
// claim drives the expiry; the signature is deliberately not verified, the
// harness only needs the lifetime.
func newBearerToken(token string, now time.Time) bearerToken {
	if token == "" {
		return bearerToken{}
	}

	expiry := now.Add(defaultTokenValidity)
	if claims := parseJWTClaims(token); claims != nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiry = exp.Time
		}
	}

	return bearerToken{token: token, expiry: expiry}
}

func (t bearerToken) valid(now time.Time) bool {
	return t.token != "" && now.Before(t.expiry)
}

// parseJWTClaims extracts claims from a JWT without verifying it. Returns nil
// for opaque tokens.
func parseJWTClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// obtainToken POSTs the credentials to the token endpoint and extracts the
// issued token. Both {"token": ...} and {"access_token": ...} response shapes
// are accepted, as is a plain-text token body.
func obtainToken(ctx context.Context, client *http.Client, baseURL, endpoint, username, password string) (string, error) {
	credentials, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	tokenURL := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(credentials))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		logging.Error("auth", nil, "Token endpoint returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	token := extractToken(body)
	if token == "" {
		return "", fmt.Errorf("no token found in response from %s", endpoint)
	}
	return token, nil
}

// extractToken pulls the token out of a token-endpoint response body.
func extractToken(body []byte) string {
	if json.Valid(body) {
		if token := gjson.GetBytes(body, "token").String(); token != "" {
			return token
		}
		if token := gjson.GetBytes(body, "access_token").String(); token != "" {
			return token
		}
		return ""
	}
	// Some token endpoints answer with the bare token.
	return strings.TrimSpace(string(body))
}
