package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"ssq-board/internal/api"
	"ssq-board/internal/cache"
	"ssq-board/internal/config"
	"ssq-board/internal/dashboard"
	"ssq-board/internal/logger"
	"ssq-board/internal/lottery"
)

//go:embed templates/*.html
var templateFS embed.FS

const viewContextKey = "view"

// Refresher 触发一次完整的数据刷新
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Server 仪表盘Web服务
type Server struct {
	cfg        *config.Server
	store      *cache.Manager
	refresher  Refresher
	limiter    *rate.Limiter
	engine     *gin.Engine
	httpServer *http.Server
	now        func() time.Time
}

// NewServer 创建Web服务
func NewServer(cfg *config.Server, store *cache.Manager, refresher Refresher) (*Server, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	perMinute := cfg.RefreshPerMinute
	if perMinute <= 0 {
		perMinute = 1
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		refresher: refresher,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		now:       time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.SetHTMLTemplate(tmpl)
	s.engine = engine
	s.routes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler 获取HTTP处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 启动监听，阻塞直到服务关闭
func (s *Server) Start() error {
	logger.Infof("Web server listening on %s", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down web server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	session := s.engine.Group("/", s.sessionMiddleware())
	session.GET("/", s.handleIndex)

	apiGroup := session.Group("/api")
	apiGroup.GET("/dashboard", s.handleDashboard)
	apiGroup.POST("/refresh", s.handleRefresh)
	apiGroup.POST("/theme", s.handleTheme)
	apiGroup.POST("/model", s.handleModel)
	apiGroup.POST("/tab", s.handleTab)
}

// requestLogger 使用全局日志器记录请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logger.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("HTTP request")
	}
}

// sessionMiddleware 根据会话Cookie加载界面状态
//
// 新会话只下发Cookie，视图在处理器修改后才写入存储。
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		view := dashboard.NewViewState()
		if id, err := c.Cookie(s.cfg.SessionCookie); err == nil {
			if _, err := uuid.Parse(id); err == nil {
				if s.store.LoadView(id, &view) != nil {
					view = dashboard.NewViewState()
				}
				view.SessionID = id
			}
		}

		c.SetCookie(s.cfg.SessionCookie, view.SessionID, int(s.cfg.SessionMaxAge.Seconds()), "/", "", s.cfg.SecureCookie, true)
		c.Set(viewContextKey, view)
		c.Next()
	}
}

func currentView(c *gin.Context) dashboard.ViewState {
	if v, ok := c.Get(viewContextKey); ok {
		if view, ok := v.(dashboard.ViewState); ok {
			return view
		}
	}
	return dashboard.NewViewState()
}

func (s *Server) saveView(view dashboard.ViewState) {
	if err := s.store.SaveView(view.SessionID, view); err != nil {
		logger.Warnf("Failed to save session view %s: %v", view.SessionID, err)
	}
}

func (s *Server) buildPage(view dashboard.ViewState) (*dashboard.Page, error) {
	return dashboard.Build(s.store.Snapshot(), view, s.now())
}

// statusFor 将错误映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrNoSnapshot), errors.Is(err, api.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, lottery.ErrMalformedPeriod):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrUnknownTab):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("Request %s failed: %v", c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
