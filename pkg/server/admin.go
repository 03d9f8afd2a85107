package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tietlabs/thapargpt/pkg/history"
)

// adminUserLimit caps how many exchanges the admin panel loads per user.
const adminUserLimit = 1000

type adminUserRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) adminUsers(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	users, err := s.store.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if users == nil {
		users = []history.Account{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (s *Server) adminUserHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	var req adminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	username, err := s.store.Username(c.Request.Context(), req.UserID)
	if errors.Is(err, history.ErrUnknownUser) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	exchanges, err := s.store.Exchanges(c.Request.Context(), req.UserID, adminUserLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if exchanges == nil {
		exchanges = []history.Exchange{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": username,
		"history":  exchanges,
	})
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	var req adminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	if err := s.store.DeleteUser(c.Request.Context(), req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User and chat history deleted"})
}

func (s *Server) adminClearHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	var req adminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	if err := s.store.ClearHistory(c.Request.Context(), req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chat history cleared"})
}
