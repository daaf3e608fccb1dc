package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/matchboard/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "validation",
			err:         fmt.Errorf("upload: %w", apperror.ValidationFailed("email", "email is required")),
			wantStatus:  http.StatusBadRequest,
			wantError:   "validation_error",
			wantMessage: "email is required",
		},
		{
			name:        "not found is hidden",
			err:         fmt.Errorf("looking up requester: %w", apperror.NotFound("user", "z@x.com")),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "conflict is hidden",
			err:         apperror.AlreadyExists("user", "a@x.com"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "driver error is hidden",
			err:         errors.New("dial tcp 10.0.0.5:3306: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			writeError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}
