package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medagenda/scheduler-api/internal/scheduling"
	"github.com/medagenda/scheduler-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Slots   []scheduling.Slot `json:"suggested_slots,omitempty"`
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrConflict:
		return http.StatusConflict
	case errors.ErrUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. Scheduling rejections keep
// their reason code and suggested slots; conflicts map to 409, policy
// violations to 422.
func RespondWithError(c *gin.Context, err error) {
	if rej, ok := err.(*scheduling.Rejection); ok {
		status := http.StatusUnprocessableEntity
		if rej.Code == scheduling.CodeTimeConflict {
			status = http.StatusConflict
		}
		c.JSON(status, Response{
			Success: false,
			Error: &Error{
				Code:    rej.Code,
				Message: rej.Message,
				Slots:   rej.SuggestedSlots,
			},
		})
		return
	}

	if appErr, ok := err.(*errors.AppError); ok {
		status := statusFor(appErr.Code)
		message := appErr.Message
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
		c.JSON(status, Response{
			Success: false,
			Error: &Error{
				Code:    http.StatusText(status),
				Message: message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error: &Error{
			Code:    http.StatusText(http.StatusInternalServerError),
			Message: "internal server error",
		},
	})
}
