package handlers

import (
	"context"
	"net/http"

	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

// StudentService defines the account operations used by the handler.
type StudentService interface {
	Signup(ctx context.Context, input services.SignupInput) (*entities.Student, error)
	Login(ctx context.Context, input services.LoginInput) (*entities.Student, error)
}

// StudentHandler handles signup and login.
type StudentHandler struct {
	service StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(service StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	DOB   string `json:"dob,omitempty"`
}

// Signup handles POST /api/user
func (h *StudentHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	student, err := h.service.Signup(r.Context(), input)
	if err != nil {
		// A taken email is reported as a plain bad request.
		if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeConflict {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user": userResponse{
			ID:    student.ID,
			Name:  student.Name,
			Email: student.Email,
			DOB:   student.DOB.Format("2006-01-02"),
		},
	})
}

// Login handles POST /api/login
func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	student, err := h.service.Login(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user": userResponse{
			ID:    student.ID,
			Name:  student.Name,
			Email: student.Email,
		},
	})
}
