package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/validation"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userProjection is the client-safe view of a user row. The password hash
// never leaves the service layer.
type userProjection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func projectUser(u *models.User) userProjection {
	return userProjection{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	in := validation.RegistrationInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if fe := in.Validate(); fe != nil {
		JSONError(w, http.StatusBadRequest, fe.Message)
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			JSONError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    projectUser(user),
		"message": "Account created successfully",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// one message for every failure mode, so the endpoint cannot be
		// used to probe which addresses have accounts
		JSONError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.users.IssueSession(user)
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.setSessionCookie(w, token)
	JSON(w, http.StatusOK, map[string]interface{}{
		"user":  projectUser(user),
		"token": token,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tok := sessionToken(r)
	if tok == "" {
		JSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	fresh, user, err := s.users.RefreshSession(r.Context(), tok)
	if err != nil {
		JSONError(w, http.StatusUnauthorized, "Session is no longer valid")
		return
	}

	s.setSessionCookie(w, fresh)
	JSON(w, http.StatusOK, map[string]interface{}{
		"user":  projectUser(user),
		"token": fresh,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// sessions are stateless bearer tokens; dropping the cookie is all
	// there is to revoke
	s.clearSessionCookie(w)
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Google OAuth ---

const oauthStateCookie = "oauth_state"

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.newOAuthState()
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute) / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// googleUserinfo is the subset of the userinfo response the back-office
// keeps.
type googleUserinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		JSONError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := s.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.logger.Error(r.Context(), "oauth code exchange failed", "error", err)
		JSONError(w, http.StatusInternalServerError, "Failed to process your request. Please try again later.")
		return
	}

	resp, err := s.oauth.Client(r.Context(), token).Get(s.userinfoURL)
	if err != nil {
		s.logger.Error(r.Context(), "oauth userinfo fetch failed", "error", err)
		JSONError(w, http.StatusInternalServerError, "Failed to process your request. Please try again later.")
		return
	}
	defer resp.Body.Close()

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		s.logger.Error(r.Context(), "oauth userinfo unreadable", "error", err)
		JSONError(w, http.StatusInternalServerError, "Failed to process your request. Please try again later.")
		return
	}

	user, err := s.users.EnsureOAuthUser(r.Context(), info.Name, info.Email, info.Picture)
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "Failed to process your request. Please try again later.")
		return
	}

	session, err := s.users.IssueSession(user)
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.setSessionCookie(w, session)

	target := "/"
	if user.Role.IsAdmin() {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusFound)
}
