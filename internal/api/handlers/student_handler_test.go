package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/feedback-service/internal/api/handlers"
	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

type stubStudentService struct {
	err error
}

func (s *stubStudentService) student(email string) *entities.Student {
	return &entities.Student{
		ID:    "s1",
		Name:  "Grace Hopper",
		Email: email,
		DOB:   time.Date(2001, 12, 9, 0, 0, 0, 0, time.UTC),
	}
}

func (s *stubStudentService) Signup(ctx context.Context, input services.SignupInput) (*entities.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.student(input.Email), nil
}

func (s *stubStudentService) Login(ctx context.Context, input services.LoginInput) (*entities.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.student(input.Email), nil
}

func TestStudentHandler_Signup(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler := handlers.NewStudentHandler(&stubStudentService{})

		req := httptest.NewRequest(http.MethodPost, "/api/user",
			strings.NewReader(`{"email":"grace@example.edu","name":"Grace Hopper","dob":"2001-12-09"}`))
		w := httptest.NewRecorder()
		handler.Signup(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Message string            `json:"message"`
			User    map[string]string `json:"user"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "User created successfully", body.Message)
		assert.Equal(t, "s1", body.User["id"])
		assert.Equal(t, "2001-12-09", body.User["dob"])
	})

	t.Run("duplicate email is a bad request", func(t *testing.T) {
		handler := handlers.NewStudentHandler(&stubStudentService{err: apperrors.NewConflictError("email already registered")})

		req := httptest.NewRequest(http.MethodPost, "/api/user",
			strings.NewReader(`{"email":"grace@example.edu","name":"Grace Hopper","dob":"2001-12-09"}`))
		w := httptest.NewRecorder()
		handler.Signup(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"email already registered"}`, w.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := handlers.NewStudentHandler(&stubStudentService{err: apperrors.NewValidationError("all fields are required")})

		req := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		handler.Signup(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStudentHandler_Login(t *testing.T) {
	t.Run("success omits dob", func(t *testing.T) {
		handler := handlers.NewStudentHandler(&stubStudentService{})

		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"email":"grace@example.edu","dob":"2001-12-09"}`))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Login successful","user":{"id":"s1","name":"Grace Hopper","email":"grace@example.edu"}}`, w.Body.String())
	})

	t.Run("credential mismatch", func(t *testing.T) {
		handler := handlers.NewStudentHandler(&stubStudentService{err: apperrors.NewUnauthorizedError("invalid credentials")})

		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"email":"grace@example.edu","dob":"2000-01-01"}`))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := handlers.NewStudentHandler(&stubStudentService{})

		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`not json`))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
