package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	Respond(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondStatusPerKind(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{Invalid("email", "The email has already been taken."), http.StatusUnprocessableEntity},
		{Unauthorized(), http.StatusUnauthorized},
		{Denied(), http.StatusForbidden},
		{Missing("Task"), http.StatusNotFound},
		{New(TooManyRequests, "Too Many Attempts."), http.StatusTooManyRequests},
		{Wrap(Storage, "Failed to store file", errors.New("disk full")), http.StatusInternalServerError},
		{fmt.Errorf("load task: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := respond(t, tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestRespondHidesInternalCause(t *testing.T) {
	_, body := respond(t, errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.Equal(t, "Server error", body["message"])
	assert.NotContains(t, body, "errors")
}

func TestRespondFieldErrors(t *testing.T) {
	_, body := respond(t, Invalid("email", "The email has already been taken."))
	assert.Equal(t, "The email has already been taken.", body["message"])
	fields := body["errors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"The email has already been taken."}, fields["email"])
}

func TestFromBinding(t *testing.T) {
	type register struct {
		Username             string `validate:"required"`
		Password             string `validate:"min=6"`
		PasswordConfirmation string `validate:"eqfield=Password"`
	}
	err := validator.New().Struct(register{Password: "abc", PasswordConfirmation: "abd"})
	require.Error(t, err)

	e := FromBinding(err)
	assert.Equal(t, Validation, e.Kind)
	assert.Contains(t, e.Fields, "username")
	assert.Contains(t, e.Fields, "password")
	assert.Contains(t, e.Fields, "password_confirmation")
	assert.True(t, Is(e, Validation))
}

func TestSnake(t *testing.T) {
	assert.Equal(t, "project_code", snake("ProjectCode"))
	assert.Equal(t, "task_id", snake("TaskID"))
	assert.Equal(t, "id", snake("ID"))
}
