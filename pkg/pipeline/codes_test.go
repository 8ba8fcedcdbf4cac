package pipeline

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:        http.StatusBadRequest,
		CodeUnknownOwner:        http.StatusForbidden,
		CodeOwnerDisabled:       http.StatusForbidden,
		CodeIdentityCheckFailed: http.StatusForbidden,
		CodeObjectNotFound:      http.StatusNotFound,
		CodeFileTooLarge:        http.StatusRequestEntityTooLarge,
		CodeUnsupportedType:     http.StatusUnsupportedMediaType,
		CodeUnsafeContent:       http.StatusUnprocessableEntity,
		CodeLowTextContent:      http.StatusUnprocessableEntity,
		CodeStorageWriteFailed:  http.StatusInternalServerError,
		CodePublishFailed:       http.StatusInternalServerError,
		CodeInternal:            http.StatusInternalServerError,
		Code("SOMETHING_NEW"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}
