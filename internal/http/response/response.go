package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondDocument serves raw report content under an explicit content type.
// Reports are regenerated server-side, so clients must not cache them.
func RespondDocument(c *gin.Context, contentType, content string) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentType+"; charset=utf-8", []byte(content))
}
