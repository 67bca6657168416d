package mockapi

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type user struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	password string
}

type userRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

func (s *Server) seedUsers() {
	now := time.Now()
	s.users["usr-0001"] = &user{
		UserID:    "usr-0001",
		Username:  "testuser",
		Email:     "testuser@example.com",
		Role:      "admin",
		Status:    "ACTIVE",
		CreatedAt: now,
		UpdatedAt: now,
		password:  "testpass",
	}
	s.userSeq = 1
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := validateUserRequest(req, true); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == req.Username {
			writeError(w, http.StatusConflict, fmt.Sprintf("username %q already exists", req.Username))
			return
		}
	}

	s.userSeq++
	now := time.Now()
	created := &user{
		UserID:    fmt.Sprintf("usr-%04d", s.userSeq),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      defaultString(req.Role, "user"),
		Status:    "ACTIVE",
		CreatedAt: now,
		UpdatedAt: now,
		password:  req.Password,
	}
	s.users[created.UserID] = created
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[chi.URLParam(r, "userId")]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleReplaceUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := validateUserRequest(req, false); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[chi.URLParam(r, "userId")]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	u.Username = req.Username
	u.Email = req.Email
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Role = defaultString(req.Role, u.Role)
	u.Status = defaultString(req.Status, u.Status)
	u.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[chi.URLParam(r, "userId")]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if email, ok := patch["email"].(string); ok {
		if !emailPattern.MatchString(email) {
			writeValidationError(w, []string{"email has invalid format"})
			return
		}
		u.Email = email
	}
	if firstName, ok := patch["firstName"].(string); ok {
		u.FirstName = firstName
	}
	if lastName, ok := patch["lastName"].(string); ok {
		u.LastName = lastName
	}
	if role, ok := patch["role"].(string); ok {
		u.Role = role
	}
	if status, ok := patch["status"].(string); ok {
		u.Status = status
	}
	u.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "userId")
	if _, ok := s.users[id]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	delete(s.users, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	status := r.URL.Query().Get("status")
	username := r.URL.Query().Get("username")
	page, pageSize := paginationParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		if username != "" && !strings.Contains(u.Username, username) {
			continue
		}
		matched = append(matched, u)
	}
	sortByID(matched, func(u *user) string { return u.UserID })

	total := len(matched)
	pageItems := paginate(matched, page, pageSize)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":    pageItems,
		"page":     page,
		"pageSize": pageSize,
		"total":    total,
	})
}

func validateUserRequest(req userRequest, requirePassword bool) []string {
	var errs []string
	if req.Username == "" {
		errs = append(errs, "username is required")
	}
	if req.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailPattern.MatchString(req.Email) {
		errs = append(errs, "email has invalid format")
	}
	if requirePassword && req.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

func paginationParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortByID[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
