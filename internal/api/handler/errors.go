package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error      string             `json:"error"`
	Kind       string             `json:"kind,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

var kindStatus = map[string]int{
	domain.KindAlreadyExists:      http.StatusConflict,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindInvalidToken:       http.StatusUnauthorized,
	domain.KindInvalidInput:       http.StatusBadRequest,
	domain.KindForbidden:          http.StatusForbidden,
}

// statusFor returns the HTTP status for an error kind; unknown kinds are 500.
func statusFor(kind string) int {
	if code, ok := kindStatus[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// NewErrorResponse builds the envelope for a domain error. Internal errors get
// a generic message so causes never reach the client.
func NewErrorResponse(err error) (int, any) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: kind}
	}

	resp := errorResponse{Error: publicMessage(err, kind), Kind: kind}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Violations = ve.Violations
	}
	return statusFor(kind), resp
}

// fail renders a domain error. Internal errors are handed back to echo so the
// central error handler can log them.
func fail(c echo.Context, err error) error {
	if domain.KindOf(err) == domain.KindInternal {
		return err
	}
	code, body := NewErrorResponse(err)
	return c.JSON(code, body)
}

func publicMessage(err error, kind string) string {
	switch kind {
	case domain.KindInvalidInput:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve.Error()
		}
		return domain.ErrInvalidInput.Error()
	case domain.KindNotFound:
		if errors.Is(err, domain.ErrMovieNotFound) {
			return domain.ErrMovieNotFound.Error()
		}
		return domain.ErrUserNotFound.Error()
	case domain.KindAlreadyExists:
		return domain.ErrUserExists.Error()
	case domain.KindInvalidCredentials:
		return domain.ErrInvalidCredentials.Error()
	case domain.KindInvalidToken:
		return domain.ErrInvalidToken.Error()
	case domain.KindForbidden:
		return domain.ErrForbidden.Error()
	default:
		return "internal server error"
	}
}

// resultLabel is the metrics label for an operation outcome.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err)
}
