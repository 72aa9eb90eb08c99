package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ssq-board/internal/dashboard"
)

type modelRequest struct {
	ModelID string `json:"model_id" binding:"required"`
}

type tabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"snapshot_loaded": s.store.Snapshot() != nil,
		"store":           s.store.Stats(),
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := s.buildPage(currentView(c))
	if err != nil {
		c.HTML(statusFor(err), "error.html", gin.H{"Message": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "index.html", page)
}

func (s *Server) handleDashboard(c *gin.Context) {
	page, err := s.buildPage(currentView(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleRefresh(c *gin.Context) {
	if !s.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "refresh rate limit exceeded"})
		return
	}

	if err := s.refresher.Refresh(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	page, err := s.buildPage(currentView(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleTheme(c *gin.Context) {
	view := currentView(c)
	view.ToggleTheme()
	s.saveView(view)
	c.JSON(http.StatusOK, gin.H{"theme": view.Theme})
}

func (s *Server) handleModel(c *gin.Context) {
	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := s.store.Snapshot()
	if snap == nil {
		writeError(c, dashboard.ErrNoSnapshot)
		return
	}

	view := currentView(c)
	if err := view.SelectModel(req.ModelID, &snap.Predictions); err != nil {
		writeError(c, err)
		return
	}
	s.saveView(view)

	page, err := dashboard.Build(snap, view, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view := currentView(c)
	if err := view.SwitchTab(req.Tab); err != nil {
		writeError(c, err)
		return
	}
	s.saveView(view)
	c.JSON(http.StatusOK, view)
}
