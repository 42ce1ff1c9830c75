package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linguacenter/apiserver/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return req
	}

	token, err := bearerToken(newReq("Bearer abc.def.ghi"))
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = bearerToken(newReq("bearer abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := bearerToken(newReq(header))
		assert.Error(t, err, "header %q", header)
	}
}

func TestParseIDParam(t *testing.T) {
	id, err := parseIDParam("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := parseIDParam(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextSubjectKey, "7")
	id, err := userIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	ctx = context.WithValue(context.Background(), contextSubjectKey, 7)
	id, err = userIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = userIDFromContext(context.Background())
	assert.Error(t, err)

	ctx = context.WithValue(context.Background(), contextSubjectKey, "-3")
	_, err = userIDFromContext(ctx)
	assert.Error(t, err)
}

func TestValidateStructReportsFieldDetails(t *testing.T) {
	req := RegisterRequest{
		Username:        "jdoe",
		Email:           "not-an-email",
		Password:        "longenough",
		PasswordConfirm: "different",
		FirstName:       "Jane",
		LastName:        "Doe",
	}

	err := validateStruct(req)
	require.Error(t, err)

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperr.KindValidation, domainErr.Kind)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "passwordconfirm")
}

func TestWriteDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, apperr.NotFound("user"))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Error)
	assert.Equal(t, "user not found", body.Message)

	// Errors outside the taxonomy never leak their message.
	rec = httptest.NewRecorder()
	writeDomainError(rec, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
}
