package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/app/services/auth"
	domainchat "homeseek/internal/domain/chat"
	domainlistings "homeseek/internal/domain/listings"
	domainnewsletter "homeseek/internal/domain/newsletter"
	domainuser "homeseek/internal/domain/user"
)

// failure is the error payload every endpoint returns, matching the client's
// expectations: {"success": false, "message": "..."}.
func failure(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps domain sentinel errors to HTTP statuses. Anything not in
// the table is a server fault: logged with detail, surfaced generically.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainchat.ErrInvalidConversationID),
		errors.Is(err, domainchat.ErrInvalidListingID),
		errors.Is(err, domainchat.ErrInvalidParticipant),
		errors.Is(err, domainchat.ErrEmptyText),
		errors.Is(err, domainchat.ErrSelfConversation),
		errors.Is(err, domainlistings.ErrNameRequired),
		errors.Is(err, domainlistings.ErrInvalidType),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrUsernameRequired),
		errors.Is(err, domainnewsletter.ErrEmailRequired),
		errors.Is(err, auth.ErrPasswordTooShort):
		failure(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		failure(c, http.StatusUnauthorized, "Wrong credentials")
	case errors.Is(err, domainchat.ErrNotParticipant):
		failure(c, http.StatusForbidden, "Not a conversation participant")
	case errors.Is(err, domainchat.ErrConversationNotFound),
		errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		failure(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		failure(c, http.StatusConflict, "User already exists")
	case errors.Is(err, domainnewsletter.ErrAlreadySubscribed):
		failure(c, http.StatusConflict, "Already subscribed")
	default:
		if logger != nil {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		failure(c, http.StatusInternalServerError, "Internal Server Error")
	}
}
