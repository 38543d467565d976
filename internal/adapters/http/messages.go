package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/domain"
)

func currentUser(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString("user_id"))
}

// handleSidebarUsers lists every other user plus per-sender unseen
// direct-message counts.
func (a *API) handleSidebarUsers(c *gin.Context) {
	me := currentUser(c)
	users, err := a.Store.ListUsers(c.Request.Context(), me)
	if err != nil {
		log.Error().Err(err).Str("module", "http.messages").Msg("list users")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	unseen, err := a.Store.UnseenCounts(c.Request.Context(), me)
	if err != nil {
		log.Error().Err(err).Str("module", "http.messages").Msg("unseen counts")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users, "unseenMessages": unseen})
}

func (a *API) handleConversation(c *gin.Context) {
	me := currentUser(c)
	other := domain.UserID(c.Param("id"))
	msgs, err := a.Store.Conversation(c.Request.Context(), me, other)
	if err != nil {
		log.Error().Err(err).Str("module", "http.messages").Msg("conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

type sendMessageReq struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// handleSendMessage persists a direct message and then fans it out to
// the receiver's live connection, if any.
func (a *API) handleSendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad payload"})
		return
	}
	msg := domain.NewDirectMessage(currentUser(c), domain.UserID(c.Param("id")), req.Text, req.Image)
	if err := a.Store.CreateMessage(c.Request.Context(), msg); err != nil {
		log.Error().Err(err).Str("module", "http.messages").Msg("create message")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	a.Hub.MessageSent(msg)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (a *API) handleMarkSeen(c *gin.Context) {
	if err := a.Store.MarkSeen(c.Request.Context(), domain.MessageID(c.Param("id"))); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
