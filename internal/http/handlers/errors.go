package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/response"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
)

// respondServiceError translates service-layer failures into the wire
// envelope. NotFound is an expected outcome and never reported as a server
// fault.
func respondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		response.RespondError(c, ae.Status, ae.Code, ae)
	case errors.Is(err, domain.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, apierr.CodeNotFound, err)
	default:
		response.RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, err)
	}
}
