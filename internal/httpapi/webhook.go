package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/webhook"
	"github.com/hirepath/hirepath/pkg/logger"
	"github.com/hirepath/hirepath/pkg/metrics"
)

const maxWebhookBody = 1 << 20

// RegisterWebhookRoutes wires the identity-provider webhook receiver. The
// route is registered outside the authenticated group; the signature check
// is the only gate.
func RegisterWebhookRoutes(rg *gin.RouterGroup, verifier *webhook.Verifier, ident *identity.Service) {
	rg.POST("/webhooks/identity", func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
			return
		}
		err = verifier.Verify(
			c.GetHeader(webhook.HeaderID),
			c.GetHeader(webhook.HeaderTimestamp),
			c.GetHeader(webhook.HeaderSignature),
			body,
		)
		if err != nil {
			metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
				return
			}
			abortError(c, err)
			return
		}
		var evt identity.Event
		if err := json.Unmarshal(body, &evt); err != nil {
			metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		if err := ident.ApplyEvent(c.Request.Context(), evt); err != nil {
			metrics.WebhookEvents.WithLabelValues(evt.Type, "failed").Inc()
			logger.Errorf("webhook event %s failed: %v", evt.Type, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
			return
		}
		metrics.WebhookEvents.WithLabelValues(evt.Type, "ok").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
	})
}
