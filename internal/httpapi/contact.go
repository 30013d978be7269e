package httpapi

import (
	"net/http"
	"strings"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/validation"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// handleContact runs the public intake: validation answers in a fixed
// order with fixed messages, then the submission is persisted and the two
// emails dispatched. Only the operator notification can fail the request.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Company) == "" ||
		strings.TrimSpace(req.Message) == "" {
		JSONError(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	if !validation.EmailValid(req.Email) {
		JSONError(w, http.StatusBadRequest, "Please provide a valid email address.")
		return
	}
	if validation.MessageTooShort(req.Message) {
		JSONError(w, http.StatusBadRequest, "Message must be at least 10 characters long.")
		return
	}

	in := validation.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Service: req.Service,
		Message: req.Message,
	}

	if _, _, err := s.contacts.Submit(r.Context(), in); err != nil {
		JSONError(w, http.StatusInternalServerError, "Failed to process your request. Please try again later.")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message sent successfully",
	})
}
