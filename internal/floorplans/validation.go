package floorplans

import (
	"fmt"
	"strings"

	"seatkeep/internal/shared/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateLayout checks every object of a layout. It does not reject an
// empty layout; callers that need seats decide that themselves.
func ValidateLayout(objects []FloorPlanObject) error {
	for i, obj := range objects {
		if err := validate.Struct(obj); err != nil {
			return apperrors.Validation(apperrors.CodeInvalidLayout, "object %d: %s", i, describe(err)).
				WithField("object_index", i)
		}
		if obj.Kind == KindGrid && obj.HasGridGeometry() && obj.TotalSeats > obj.Rows*obj.Columns {
			return apperrors.Validation(apperrors.CodeInvalidLayout,
				"object %d: total_seats %d exceeds grid %dx%d", i, obj.TotalSeats, obj.Rows, obj.Columns).
				WithField("object_index", i)
		}
		if (obj.Rows > 0) != (obj.Columns > 0) {
			return apperrors.Validation(apperrors.CodeInvalidLayout,
				"object %d: rows and columns must be set together", i).
				WithField("object_index", i)
		}
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, ", ")
}
