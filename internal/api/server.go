package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BlackJack-14/taskManager/internal/api/auth"
	"github.com/BlackJack-14/taskManager/internal/api/middleware"
	"github.com/BlackJack-14/taskManager/internal/config"
	"github.com/BlackJack-14/taskManager/internal/pkg/metrics"
	"github.com/BlackJack-14/taskManager/internal/pkg/presence"
	"github.com/BlackJack-14/taskManager/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 数据层是一个注入的内存 Store：启动时构造、随请求处理器传递，
// 进程退出后数据即丢失。
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	auth      *auth.Handler
	tracker   *presence.Tracker
	router    *gin.Engine
	startedAt time.Time
}

// NewServer 初始化 API 服务器。
//
// rdb 可以为 nil，此时在线用户标记被整体关闭。
func NewServer(cfg *config.Config, logger *slog.Logger, st *store.Store, rdb *redis.Client) *Server {
	metrics.InitMetrics()

	var tracker *presence.Tracker
	if rdb != nil {
		tracker = presence.NewTracker(rdb, cfg.App.PresenceTTL)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		if logger != nil {
			logger.Error("panic recovered",
				slog.String("path", c.Request.URL.Path),
				slog.Any("panic", err),
			)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}))
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		auth:      auth.NewHandler(st, cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger),
		tracker:   tracker,
		router:    r,
		startedAt: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Tracker 返回在线用户追踪器（可能为 nil）。
func (s *Server) Tracker() *presence.Tracker {
	return s.tracker
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	s.router.StaticFile("/", s.cfg.App.WebDir+"/index.html")
	s.router.Static("/assets", s.cfg.App.WebDir+"/assets")

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)

	api.POST("/auth/register", s.auth.Register)
	api.POST("/auth/login", s.auth.Login)
	api.POST("/auth/logout", s.auth.Logout)

	authed := api.Group("/")
	authed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret, s.store))
	authed.Use(middleware.ActivityMiddleware(s.tracker))
	authed.GET("/auth/me", s.auth.Me)
	authed.GET("/tasks", s.handleListTasks)
	authed.GET("/tasks/:id", s.handleGetTask)
	authed.POST("/tasks", s.handleCreateTask)
	authed.PUT("/tasks/:id", s.handleUpdateTask)
	authed.DELETE("/tasks/:id", s.handleDeleteTask)
	authed.PATCH("/tasks/:id/toggle", s.handleToggleTask)
}

// handleHealth 返回进程状态与当前集合大小。
func (s *Server) handleHealth(c *gin.Context) {
	users, tasks := s.store.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Seconds(),
		"users":     users,
		"tasks":     tasks,
	})
}

func getUserID(c *gin.Context) int {
	return c.GetInt("userID")
}
