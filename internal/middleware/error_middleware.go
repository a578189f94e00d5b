package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
)

// apiError pairs an HTTP status with the error detail sent to the client
type apiError struct {
	status int
	code   dto.ErrorCode
	msg    string
}

// classify maps the error taxonomy onto HTTP responses. More specific
// sentinels are checked before the generic ones they wrap.
func classify(err error) apiError {
	switch {
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return apiError{http.StatusConflict, dto.ErrorCodeCapacityExceeded, "Event has no free seats"}
	case errors.Is(err, apperrors.ErrEventClosed):
		return apiError{http.StatusConflict, dto.ErrorCodeEventClosed, "Event is not accepting participants"}
	case errors.Is(err, apperrors.ErrInvalidOption):
		return apiError{http.StatusBadRequest, dto.ErrorCodeInvalidOption, "Option is not configured for this question"}
	case errors.Is(err, apperrors.ErrSurveyClosed):
		return apiError{http.StatusConflict, dto.ErrorCodeSurveyClosed, "Survey is closed"}
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return apiError{http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"}
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return apiError{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"}
	case errors.Is(err, apperrors.ErrConflict):
		return apiError{http.StatusConflict, dto.ErrorCodeConflict, "Resource was modified concurrently"}
	case errors.Is(err, apperrors.ErrValidationFailed):
		return apiError{http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"}
	case errors.Is(err, apperrors.ErrBadRequest):
		return apiError{http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"}
	default:
		return apiError{http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"}
	}
}

// ErrorCodeOf returns the API error code err maps to
func ErrorCodeOf(err error) dto.ErrorCode {
	return classify(err).code
}

// HandleAPIError writes the error response matching err
func HandleAPIError(c *gin.Context, err error) {
	mapped := classify(err)

	detail := dto.NewErrorDetail(mapped.code, mapped.msg)
	if mapped.status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled API error")
	} else {
		detail = detail.WithDetails(err.Error())
	}

	var custom *apperrors.CustomError
	if errors.As(err, &custom) && len(custom.Details) > 0 {
		detail = detail.WithDetails(custom.Details)
	}

	c.AbortWithStatusJSON(mapped.status, dto.NewErrorResponse(detail))
}
