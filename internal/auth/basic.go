package auth

import (
	"net/http"
)

// basicCredentials holds username/password for HTTP basic auth.
type basicCredentials struct {
	username string
	password string
}

func (c basicCredentials) apply(req *http.Request) {
	if c.username == "" {
		return
	}
	req.SetBasicAuth(c.username, c.password)
}
