package pipeline

import "net/http"

// Code classifies every terminal failure of a submission
type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeUnknownOwner        Code = "UNKNOWN_OWNER"
	CodeOwnerDisabled       Code = "OWNER_DISABLED"
	CodeIdentityCheckFailed Code = "IDENTITY_CHECK_FAILED"
	CodeFileTooLarge        Code = "FILE_TOO_LARGE"
	CodeUnsupportedType     Code = "UNSUPPORTED_TYPE"
	CodeUnsafeContent       Code = "UNSAFE_CONTENT"
	CodeLowTextContent      Code = "LOW_TEXT_CONTENT"
	CodeObjectNotFound      Code = "OBJECT_NOT_FOUND"
	CodeStorageWriteFailed  Code = "STORAGE_WRITE_FAILED"
	CodePublishFailed       Code = "PUBLISH_FAILED"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus maps a code to its response status
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnknownOwner, CodeOwnerDisabled, CodeIdentityCheckFailed:
		return http.StatusForbidden
	case CodeObjectNotFound:
		return http.StatusNotFound
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedType:
		return http.StatusUnsupportedMediaType
	case CodeUnsafeContent, CodeLowTextContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
