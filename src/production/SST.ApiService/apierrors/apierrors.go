package apierrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
)

// Internal logs err under a freshly generated correlation id and aborts the
// request with a generic response carrying only that id. The id is the sole
// link between what the client sees and the server-side log entry; the
// underlying error text never reaches the client.
func Internal(c *gin.Context, log *logger.Logger, context string, err error) {
	correlationID := uuid.NewString()
	log.Logger.Error().
		Str("correlation_id", correlationID).
		Err(err).
		Msg(context)

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":          "internal error",
		"correlation_id": correlationID,
	})
}
