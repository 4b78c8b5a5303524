package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Envelope is the response body shape for every mutating call and every
// error: {message, data} on success, {message, errors} on failure.
type Envelope struct {
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// StatusCode maps a Kind onto an HTTP status code. Conflicts are reported
// as 400 alongside validation failures.
func StatusCode(k Kind) int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler renders errors returned by handlers and middleware.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func render(err error) (int, Envelope) {
	var ae *Error
	if errors.As(err, &ae) {
		status := StatusCode(ae.Kind)
		if status == http.StatusInternalServerError {
			return status, Envelope{Message: "Internal server error"}
		}
		return status, Envelope{Message: ae.Message, Errors: ae.Fields}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else if he.Message != nil {
			msg = fmt.Sprintf("%v", he.Message)
		}
		if he.Code == http.StatusNotFound {
			msg = "Not found."
		}
		return he.Code, Envelope{Message: msg}
	}

	return http.StatusInternalServerError, Envelope{Message: "Internal server error"}
}

var bodyBinder = &echo.DefaultBinder{}

// BindBody decodes the JSON request body into v. Malformed JSON and
// wrongly typed fields become validation errors; transport failures such as
// an oversized body or an unsupported media type keep their status.
func BindBody(c echo.Context, v interface{}) error {
	err := bodyBinder.BindBody(c, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		ve := FieldError(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type))
		ve.Err = err
		return ve
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		var inner *echo.HTTPError
		if he.Internal != nil && errors.As(he.Internal, &inner) {
			return inner
		}
		if he.Code != http.StatusBadRequest {
			return he
		}
	}

	ve := Validation("Invalid input", map[string][]string{NonFieldKey: {"JSON parse error."}})
	ve.Err = err
	return ve
}
