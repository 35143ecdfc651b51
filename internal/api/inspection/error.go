package inspection

import (
	"net/http"

	"uniform-inspection/pkg/response"
)

var (
	ErrNoDetections        = response.NewError(http.StatusUnprocessableEntity, "no uniform elements detected")
	ErrDetectorUnavailable = response.NewError(http.StatusServiceUnavailable, "detection service unavailable")
	ErrInvalidImageFile    = response.NewError(http.StatusBadRequest, "invalid image file")
	ErrMissingPhoto        = response.NewError(http.StatusBadRequest, "uniform photo is required")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
