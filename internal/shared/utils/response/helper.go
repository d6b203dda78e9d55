package response

import (
	"errors"
	"net/http"

	"seatkeep/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a service error onto the standard envelope.
func RespondError(c *gin.Context, err error) {
	code := apperrors.HTTPStatus(err)
	if appErr, ok := apperrors.As(err); ok && appErr.Kind != apperrors.KindInternal {
		RespondJSON(c, "error", code, appErr.Message, nil, ErrorDetail{Code: appErr.Code, Fields: appErr.Fields})
		return
	}
	_ = c.Error(err)
	RespondJSON(c, "error", http.StatusInternalServerError, "internal server error", nil, ErrorDetail{Code: apperrors.CodeInternal})
}

// RespondBindError reports a request body or query that failed binding.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]interface{}, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		RespondJSON(c, "error", http.StatusBadRequest, "Invalid request", nil, ErrorDetail{Code: apperrors.CodeInvalidInput, Fields: fields})
		return
	}
	RespondJSON(c, "error", http.StatusBadRequest, "Invalid request", nil, ErrorDetail{Code: apperrors.CodeInvalidInput, Fields: map[string]interface{}{"body": err.Error()}})
}
