package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"antispam/internal/config"
	"antispam/internal/handler"
	"antispam/internal/middleware"
	"antispam/internal/repository"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	log    *logrus.Logger
	zl     *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, log *logrus.Logger, zl *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		log:    log,
		zl:     zl,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	statsRepo := repository.NewStatsRepository(s.db, s.zl)
	logRepo := repository.NewDetectionLogRepository(s.db, s.zl)
	policyRepo := repository.NewGroupPolicyRepository(s.db, s.zl)
	authHandler := handler.NewAuthHandler(s.cfg, s.zl)
	analyticsHandler := handler.NewAnalyticsHandler(statsRepo, logRepo, s.zl)
	policyHandler := handler.NewPolicyHandler(policyRepo, s.zl)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.POST("/api/auth/login", authHandler.Login)

	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware([]byte(s.cfg.Admin.JWTSecret), s.zl))
	{
		authRequired.GET("/groups", policyHandler.ListEnabledGroups)
		authRequired.GET("/groups/:group_id/policy", policyHandler.GetPolicy)
		authRequired.PUT("/groups/:group_id/policy", policyHandler.UpdatePolicy)
		authRequired.GET("/groups/:group_id/stats", analyticsHandler.GetGroupStats)
		authRequired.GET("/groups/:group_id/logs", analyticsHandler.GetRecentLogs)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Admin API starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Admin API failed to start: %v", err)
	}
}
