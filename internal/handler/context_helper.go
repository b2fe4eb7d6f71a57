package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pupil-dashboard/internal/middleware"
	"github.com/noah-isme/pupil-dashboard/internal/service"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
	"github.com/noah-isme/pupil-dashboard/pkg/response"
)

func clientFromContext(c *gin.Context) service.RecordsClient {
	value, exists := c.Get(middleware.ContextClientKey)
	if !exists {
		return nil
	}
	client, ok := value.(service.RecordsClient)
	if !ok {
		return nil
	}
	return client
}

// requireClient aborts with a 401 when the records middleware did not run.
func requireClient(c *gin.Context) (service.RecordsClient, bool) {
	client := clientFromContext(c)
	if client == nil {
		response.Abort(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return client, true
}

func scopeFromContext(c *gin.Context) string {
	return c.GetString(middleware.ContextScopeKey)
}
