package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/app/dto"
	domainnewsletter "homeseek/internal/domain/newsletter"
)

type NewsletterHTTP interface {
	Subscribe(c *gin.Context)
}

type NewsletterHandler struct {
	Subscriptions domainnewsletter.Repository
	Logger        *slog.Logger
}

// Subscribe records an email address. Duplicates are acknowledged rather
// than rejected, matching the frontend's fire-and-forget form.
func (h NewsletterHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Missing email")
		return
	}
	sub, err := domainnewsletter.NewSubscription(req.Email)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.Subscriptions.Save(requestContext(c), sub); err != nil {
		if errors.Is(err, domainnewsletter.ErrAlreadySubscribed) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Already subscribed"})
			return
		}
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subscribed"})
}
