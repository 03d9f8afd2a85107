package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tietlabs/thapargpt/pkg/config"
	"github.com/tietlabs/thapargpt/pkg/history"
	"github.com/tietlabs/thapargpt/pkg/logger"
	"github.com/tietlabs/thapargpt/pkg/media"
)

const (
	EndPointHealth         = "/health"
	EndPointRegister       = "/register"
	EndPointLogin          = "/login"
	EndPointForgotPassword = "/forgot-password"
	EndPointResetPassword  = "/reset-password"
	EndPointChat           = "/chat"
	EndPointHistory        = "/history/:user_id"

	EndPointAdminUsers        = "/admin/users"
	EndPointAdminUserHistory  = "/admin/user-history"
	EndPointAdminDeleteUser   = "/admin/delete-user"
	EndPointAdminClearHistory = "/admin/clear-history"
)

// Asker is the single capability the HTTP layer needs from the core.
type Asker interface {
	Ask(ctx context.Context, query string, attachments []media.Attachment) (string, error)
}

// Server exposes the assistant over HTTP, with user accounts and chat
// history persisted alongside.
type Server struct {
	engine    *gin.Engine
	assistant Asker
	store     *history.Store
	cfg       *config.Config
}

// New builds the router. store may be nil, in which case account and
// history endpoints answer 503 and chat exchanges are not persisted.
func New(cfg *config.Config, assistant Asker, store *history.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:    engine,
		assistant: assistant,
		store:     store,
		cfg:       cfg,
	}

	engine.Use(corsMiddleware(cfg.AllowedOrigins))
	engine.Use(requestLogMiddleware())

	engine.GET(EndPointHealth, s.health)
	engine.POST(EndPointRegister, s.register)
	engine.POST(EndPointLogin, s.login)
	engine.POST(EndPointForgotPassword, s.forgotPassword)
	engine.POST(EndPointResetPassword, s.resetPassword)
	engine.POST(EndPointChat, s.chat)
	engine.GET(EndPointHistory, s.chatHistory)

	admin := engine.Group("", gin.BasicAuth(gin.Accounts{
		cfg.AdminUsername: cfg.AdminPassword,
	}))
	admin.GET(EndPointAdminUsers, s.adminUsers)
	admin.POST(EndPointAdminUserHistory, s.adminUserHistory)
	admin.POST(EndPointAdminDeleteUser, s.adminDeleteUser)
	admin.POST(EndPointAdminClearHistory, s.adminClearHistory)

	return s
}

// ServeHTTP makes the server usable as an http.Handler, mainly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run blocks serving on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	logger.InfoCF("server", "Listening", map[string]interface{}{"addr": addr})
	return s.engine.Run(addr)
}
