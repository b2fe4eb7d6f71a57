package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// Envelope is the flat response contract: a success flag, an optional
// message and the payload keys merged alongside them.
type Envelope map[string]interface{}

// Success sends {success: true, ...payload}.
func Success(c *gin.Context, status int, payload gin.H) {
	envelope := Envelope{"success": true}
	for key, value := range payload {
		if key == "success" {
			continue
		}
		envelope[key] = value
	}
	noStore(c)
	c.JSON(status, envelope)
}

// OK responds with HTTP 200 and the payload.
func OK(c *gin.Context, payload gin.H) {
	Success(c, http.StatusOK, payload)
}

// Message responds with HTTP 200 and a message only.
func Message(c *gin.Context, message string) {
	Success(c, http.StatusOK, gin.H{"message": message})
}

// Error sends {success: false, message, code} using the typed status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{
		"success": false,
		"message": appErr.Message,
		"code":    appErr.Code,
	})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
