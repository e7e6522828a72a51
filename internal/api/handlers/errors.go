package handlers

import (
	"github.com/gin-gonic/gin"

	"txledger/internal/api/middleware"
	"txledger/internal/pkg/apperr"
	"txledger/internal/pkg/logging"
)

// respondError writes err as a {code, message} JSON body, choosing the
// status from its apperr.Kind.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperr.Of(err)
	if !ok {
		appErr = apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindStoreUnavailable {
		logging.Error("request failed", err, map[string]interface{}{
			"kind":       string(appErr.Kind),
			"path":       c.FullPath(),
			"request_id": middleware.RequestID(c),
		})
	}

	c.JSON(appErr.Kind.HTTPStatus(), gin.H{
		"code":    string(appErr.Kind),
		"message": appErr.Message,
	})
}
