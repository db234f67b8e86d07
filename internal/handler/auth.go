package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/middleware"
	"github.com/mkowalczyk/triplog/internal/service"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	FirstName       *string   `json:"first_name,omitempty"`
	LastName        *string   `json:"last_name,omitempty"`
	HasProfileImage bool      `json:"has_profile_image"`
	CreatedAt       time.Time `json:"created_at"`
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register handles POST /auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	user, err := s.auth.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userToResponse(user))
}

// Login handles POST /auth/login. A successful login issues a session token.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: s.sessions.Login(user.Email),
		User:  userToResponse(user),
	})
}

// Logout handles POST /auth/logout. It invalidates the presented token.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r.Header.Get("Authorization")); ok {
		s.sessions.Logout(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Profile(r.Context(), middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// UpdateProfile handles PUT /profile.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), middleware.UserEmail(r.Context()), req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// ChangePassword handles PUT /profile/password. Every other session of the
// user is invalidated once the password changes.
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	email := middleware.UserEmail(r.Context())
	err := s.auth.ChangePassword(r.Context(), email, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.sessions.LogoutAll(email)
	w.WriteHeader(http.StatusNoContent)
}

// UploadProfileImage handles POST /profile/image with a raw image body.
func (s *Server) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		writeBadRequest(w, "image body is required")
		return
	}

	path, err := s.files.Save(data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.auth.SetProfileImage(r.Context(), middleware.UserEmail(r.Context()), path); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfileImage handles GET /profile/image.
func (s *Server) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Profile(r.Context(), middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user.ProfileImagePath == "" {
		writeError(w, http.StatusNotFound, "not_found", "no profile image set")
		return
	}
	data, err := s.files.Read(user.ProfileImagePath)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

// userToResponse converts a domain.User into its API shape. The password
// hash and raw image path never leave the server.
func userToResponse(u domain.User) userResponse {
	resp := userResponse{
		Email:           u.Email,
		Name:            u.Name,
		HasProfileImage: u.ProfileImagePath != "",
		CreatedAt:       u.CreatedAt,
	}
	if u.FirstName != "" {
		resp.FirstName = &u.FirstName
	}
	if u.LastName != "" {
		resp.LastName = &u.LastName
	}
	return resp
}
