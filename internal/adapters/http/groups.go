package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/domain"
)

func (a *API) handleCreateGroup(c *gin.Context) {
	var req struct {
		GroupName   string          `json:"groupName"`
		Description string          `json:"description"`
		Members     []domain.UserID `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad payload"})
		return
	}
	group, err := domain.NewGroup(req.GroupName, req.Description, currentUser(c), req.Members)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if err := a.Store.CreateGroup(c.Request.Context(), group); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("create group")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	a.Hub.GroupCreated(group)
	c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
}

func (a *API) handleListGroups(c *gin.Context) {
	groups, err := a.Store.GroupsForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("list groups")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "groups": groups})
}

// loadGroupForMember fetches the group and enforces membership.
func (a *API) loadGroupForMember(c *gin.Context) (*domain.Group, bool) {
	group, err := a.Store.GroupByID(c.Request.Context(), domain.GroupID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "group not found"})
		return nil, false
	}
	if !group.HasMember(currentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not a member of this group"})
		return nil, false
	}
	return group, true
}

// loadGroupForAdmin fetches the group and enforces admin.
func (a *API) loadGroupForAdmin(c *gin.Context) (*domain.Group, bool) {
	group, err := a.Store.GroupByID(c.Request.Context(), domain.GroupID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "group not found"})
		return nil, false
	}
	if group.Admin != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "admin only"})
		return nil, false
	}
	return group, true
}

func (a *API) handleGetGroup(c *gin.Context) {
	group, ok := a.loadGroupForMember(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
}

func (a *API) handleUpdateGroup(c *gin.Context) {
	group, ok := a.loadGroupForAdmin(c)
	if !ok {
		return
	}
	var req struct {
		GroupName   string `json:"groupName"`
		Description string `json:"description"`
		GroupImage  string `json:"groupImage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad payload"})
		return
	}
	if req.GroupName != "" {
		group.GroupName = req.GroupName
	}
	if req.Description != "" {
		group.Description = req.Description
	}
	if req.GroupImage != "" {
		group.GroupImage = req.GroupImage
	}
	if err := a.Store.UpdateGroup(c.Request.Context(), group); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("update group")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	a.Hub.GroupUpdated(c.Request.Context(), group)
	c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
}

func (a *API) handleAddMembers(c *gin.Context) {
	group, ok := a.loadGroupForAdmin(c)
	if !ok {
		return
	}
	var req struct {
		Members []domain.UserID `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Members) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "members array is required"})
		return
	}
	added := 0
	for _, m := range req.Members {
		if group.HasMember(m) {
			continue
		}
		group.Members = append(group.Members, m)
		added++
	}
	if added == 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "all users are already members"})
		return
	}
	if err := a.Store.UpdateGroup(c.Request.Context(), group); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("add members")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	a.Hub.GroupUpdated(c.Request.Context(), group)
	c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
}

func (a *API) handleRemoveMember(c *gin.Context) {
	me := currentUser(c)
	group, err := a.Store.GroupByID(c.Request.Context(), domain.GroupID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "group not found"})
		return
	}
	var req struct {
		MemberID domain.UserID `json:"memberId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.MemberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad payload"})
		return
	}
	// Admin removes anyone but themselves; members may only leave.
	if group.Admin != me && req.MemberID != me {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "admin only"})
		return
	}
	if req.MemberID == group.Admin {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "cannot remove group admin"})
		return
	}
	kept := group.Members[:0]
	for _, m := range group.Members {
		if m != req.MemberID {
			kept = append(kept, m)
		}
	}
	group.Members = kept
	if err := a.Store.UpdateGroup(c.Request.Context(), group); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("remove member")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	a.Hub.GroupUpdated(c.Request.Context(), group)
	c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
}

func (a *API) handleDeleteGroup(c *gin.Context) {
	group, ok := a.loadGroupForAdmin(c)
	if !ok {
		return
	}
	if err := a.Store.DeleteGroup(c.Request.Context(), group.ID); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("delete group")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	a.Hub.GroupDeleted(group.ID, group.Members)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "group deleted"})
}

// handleSendGroupMessage persists, updates the group's last message and
// fans the message out to the room.
func (a *API) handleSendGroupMessage(c *gin.Context) {
	group, ok := a.loadGroupForMember(c)
	if !ok {
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad payload"})
		return
	}
	msg := domain.NewGroupMessage(currentUser(c), group.ID, req.Text, req.Image)
	if err := a.Store.CreateMessage(c.Request.Context(), msg); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("create group message")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	if err := a.Store.SetLastMessage(c.Request.Context(), group.ID, msg.ID); err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("set last message")
	}
	a.Hub.GroupMessageSent(msg)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (a *API) handleGroupMessages(c *gin.Context) {
	group, ok := a.loadGroupForMember(c)
	if !ok {
		return
	}
	msgs, err := a.Store.GroupMessages(c.Request.Context(), group.ID)
	if err != nil {
		log.Error().Err(err).Str("module", "http.groups").Msg("group messages")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}
