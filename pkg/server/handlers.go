package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tietlabs/thapargpt/pkg/history"
	"github.com/tietlabs/thapargpt/pkg/logger"
	"github.com/tietlabs/thapargpt/pkg/media"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)

	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}
	if len(req.Password) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 4 characters"})
		return
	}
	if strings.EqualFold(req.Username, s.cfg.AdminUsername) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This username is reserved"})
		return
	}

	id, err := s.store.CreateUser(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, history.ErrUsernameTaken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user_id":  id,
		"username": req.Username,
	})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)

	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	if req.Username == s.cfg.AdminUsername && req.Password == s.cfg.AdminPassword {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"is_admin": true,
			"username": s.cfg.AdminUsername,
		})
		return
	}

	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	user, err := s.store.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, history.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"is_admin": false,
		"user_id":  user.ID,
		"username": user.Username,
	})
}

func (s *Server) forgotPassword(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	}

	token, err := s.store.CreateResetToken(c.Request.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, history.ErrUnknownUser) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Username not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"reset_code": token,
		"message":    "Save this code to reset your password",
	})
}

func (s *Server) resetPassword(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	var req struct {
		Username    string `json:"username"`
		ResetCode   string `json:"reset_code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.ResetCode == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, reset code and new password required"})
		return
	}
	if len(req.NewPassword) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 4 characters"})
		return
	}

	err := s.store.ResetPassword(c.Request.Context(), req.Username, req.ResetCode, req.NewPassword)
	if errors.Is(err, history.ErrInvalidResetToken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reset code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// chat answers a question. It accepts either a JSON body
// {"message": ..., "user_id": ...} or a multipart form with fields
// "message", "user_id" and an optional "file" upload.
func (s *Server) chat(c *gin.Context) {
	var (
		message     string
		userID      int64
		attachments []media.Attachment
		fileName    string
	)

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		message = c.PostForm("message")
		userID, _ = strconv.ParseInt(c.PostForm("user_id"), 10, 64)

		file, header, err := c.Request.FormFile("file")
		if err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(file)
			if readErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
				return
			}
			mimeType := header.Header.Get("Content-Type")
			if mimeType == "" || mimeType == "application/octet-stream" {
				mimeType = media.DetectMIME(header.Filename, data)
			}
			attachments = append(attachments, media.Attachment{
				Data:     data,
				MIMEType: mimeType,
				FileName: header.Filename,
			})
			fileName = header.Filename
		}
	} else {
		var req struct {
			Message string `json:"message"`
			UserID  int64  `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		message = req.Message
		userID = req.UserID
	}

	answer, err := s.assistant.Ask(c.Request.Context(), message, attachments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.store != nil && userID > 0 {
		if err := s.store.SaveExchange(c.Request.Context(), userID, message, answer, fileName); err != nil {
			logger.WarnCF("server", "Could not persist exchange", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

func (s *Server) chatHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not enabled"})
		return
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	exchanges, err := s.store.Exchanges(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if exchanges == nil {
		exchanges = []history.Exchange{}
	}

	c.JSON(http.StatusOK, gin.H{"history": exchanges})
}
