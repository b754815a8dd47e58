package errors

import (
	"net/http"

	"github.com/mangogik/catalog-hotel/pkg/status"
)

type AppError struct {
	HTTPStatusCode int
	Status         string
	Message        string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(httpStatusCode int, errStatus string, message string) error {
	return &AppError{
		HTTPStatusCode: httpStatusCode,
		Status:         errStatus,
		Message:        message,
	}
}

// Destruct unwraps an error into its AppError parts. Errors that are not
// AppError fall back to a generic internal server error.
func Destruct(err error) AppError {
	if ae, ok := err.(*AppError); ok {
		return *ae
	}

	return AppError{
		HTTPStatusCode: http.StatusInternalServerError,
		Status:         status.INTERNAL_SERVER_ERROR,
		Message:        "internal server error",
	}
}
