package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/qacms/internal/rbac/domain"
	"github.com/allisson/qacms/internal/rbac/http/mocks"
)

func TestMeHandler_GetAccessHandler(t *testing.T) {
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		authz := mocks.NewMockAuthorizationUseCase(t)
		handler := NewMeHandler(authz, createTestLogger())
		authz.On("GetUserAccess", mock.Anything, userID).Return(&domain.UserAccess{
			UserID:      userID,
			Roles:       domain.NewNameSet("editor"),
			Permissions: domain.NewNameSet("news.view", "news.create"),
		}, nil).Once()

		w := serve(http.MethodGet, "/v1/me/access", "/v1/me/access", nil, withUser(userID), handler.GetAccessHandler)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"user_id":"`+userID.String()+`","roles":["editor"],"permissions":["news.create","news.view"]}`,
			w.Body.String())
	})

	t.Run("No roles renders empty arrays", func(t *testing.T) {
		authz := mocks.NewMockAuthorizationUseCase(t)
		handler := NewMeHandler(authz, createTestLogger())
		authz.On("GetUserAccess", mock.Anything, userID).Return(&domain.UserAccess{UserID: userID}, nil).Once()

		w := serve(http.MethodGet, "/v1/me/access", "/v1/me/access", nil, withUser(userID), handler.GetAccessHandler)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"`+userID.String()+`","roles":[],"permissions":[]}`, w.Body.String())
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		authz := mocks.NewMockAuthorizationUseCase(t)
		handler := NewMeHandler(authz, createTestLogger())

		w := serve(http.MethodGet, "/v1/me/access", "/v1/me/access", nil, handler.GetAccessHandler)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Store error", func(t *testing.T) {
		authz := mocks.NewMockAuthorizationUseCase(t)
		handler := NewMeHandler(authz, createTestLogger())
		authz.On("GetUserAccess", mock.Anything, userID).Return(nil, errors.New("boom")).Once()

		w := serve(http.MethodGet, "/v1/me/access", "/v1/me/access", nil, withUser(userID), handler.GetAccessHandler)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
