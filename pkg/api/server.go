// Package api exposes the conversation pipeline over a small HTTP JSON API,
// the web-front-end analog of the CLI.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/andrew/juris-chat/pkg/chat"
	"github.com/andrew/juris-chat/pkg/export"
	"github.com/andrew/juris-chat/pkg/registry"
)

// Server serves the HTTP API over one chat service.
type Server struct {
	svc    *chat.Service
	reg    *registry.Registry
	logger *slog.Logger

	// Only one run may be active per assistant; concurrent sends for the
	// same assistant are rejected rather than queued.
	mu      sync.Mutex
	pending map[string]bool
}

// NewServer creates the API server.
func NewServer(svc *chat.Service, reg *registry.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, reg: reg, logger: logger, pending: make(map[string]bool)}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	api := r.Group("/api")
	{
		api.GET("/assistants", s.listAssistants)
		api.GET("/conversations/:id", s.getConversation)
		api.DELETE("/conversations/:id", s.clearConversation)
		api.POST("/conversations/:id/messages", s.sendMessage)
		api.POST("/conversations/:id/export", s.exportConversation)
		api.POST("/conversations/:id/snapshots", s.saveSnapshot)
		api.GET("/snapshots", s.listSnapshots)
	}
	return r
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) listAssistants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assistants": s.reg.List()})
}

func (s *Server) getConversation(c *gin.Context) {
	thread, err := s.svc.History(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (s *Server) clearConversation(c *gin.Context) {
	if err := s.svc.Clear(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type sendRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) sendMessage(c *gin.Context) {
	id := c.Param("id")
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if !s.acquire(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already pending for this assistant"})
		return
	}
	defer s.release(id)

	res, err := s.svc.Send(c.Request.Context(), id, req.Message)
	if err != nil {
		s.logger.Error("send failed", "assistant", id, "error", err)
		status := http.StatusBadRequest
		if res.Exported {
			// The message was appended but the document export failed.
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if res.Exported {
		// No reply exists for an intercepted send.
		c.JSON(http.StatusOK, gin.H{
			"exported":   true,
			"exportPath": res.ExportPath,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reply":  res.Reply,
		"failed": res.Failed,
	})
}

type exportRequest struct {
	// Mode is "pdf", "clipboard" or "share"; defaults to pdf.
	Mode string `json:"mode"`
}

func (s *Server) exportConversation(c *gin.Context) {
	id := c.Param("id")
	var req exportRequest
	_ = c.ShouldBindJSON(&req)

	var (
		path string
		err  error
	)
	switch req.Mode {
	case "", "pdf":
		path, err = s.svc.ExportPDF(id)
	case "clipboard":
		err = s.svc.ExportClipboard(id)
	case "share":
		err = s.svc.ExportShare(id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown export mode"})
		return
	}
	if errors.Is(err, export.ErrNothingToExport) {
		c.JSON(http.StatusConflict, gin.H{"error": "conversation is empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

type snapshotRequest struct {
	Title string `json:"title"`
}

func (s *Server) saveSnapshot(c *gin.Context) {
	var req snapshotRequest
	_ = c.ShouldBindJSON(&req)
	snap, err := s.svc.SaveSnapshot(c.Param("id"), req.Title)
	if errors.Is(err, export.ErrNothingToExport) {
		c.JSON(http.StatusConflict, gin.H{"error": "conversation is empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (s *Server) listSnapshots(c *gin.Context) {
	snaps, err := s.svc.Snapshots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
}

func (s *Server) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] {
		return false
	}
	s.pending[id] = true
	return true
}

func (s *Server) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}
