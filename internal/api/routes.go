package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/squareland/pinger/internal/ping"
	"github.com/squareland/pinger/internal/util"
)

// handlePing is a liveness check.
func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleVersion returns the application version.
func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}

// handleGetServers returns the latest poll result for every target.
func (s *Server) handleGetServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"servers": s.monitor.Latest()})
}

// handleGetServer returns the latest poll result for one target.
func (s *Server) handleGetServer(c *gin.Context) {
	name := c.Param("name")

	state, ok := s.monitor.LatestFor(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown target: " + name})
		return
	}

	c.JSON(http.StatusOK, state)
}

// handleGetServerHistory returns recorded samples for one target,
// newest first. The limit query parameter caps the result (default 100).
func (s *Server) handleGetServerHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
		return
	}

	name := c.Param("name")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	samples, err := s.history.Recent(name, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"target":  name,
		"samples": samples,
	})
}

// queryRequest is the body of POST /api/query.
type queryRequest struct {
	Address    string `json:"address" binding:"required"`
	TimeoutSec int    `json:"timeout_sec"`
}

// handleQuery performs an on-demand status query against an arbitrary
// address, independent of the configured targets.
func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	if _, _, err := net.SplitHostPort(req.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address must be host:port"})
		return
	}

	timeout := time.Duration(s.cfg.Monitor.ConnectTimeoutSec) * time.Second
	if req.TimeoutSec > 0 {
		timeout = time.Duration(req.TimeoutSec) * time.Second
	}

	start := time.Now()
	status, err := ping.GetStatus(req.Address, timeout)
	rtt := time.Since(start)

	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"address": req.Address,
			"online":  false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": req.Address,
		"online":  true,
		"status":  status,
		"rtt_ms":  rtt.Milliseconds(),
	})
}

// handleGetSystem returns host information and resource usage.
func (s *Server) handleGetSystem(c *gin.Context) {
	info := util.GetSystemInfo()

	resp := gin.H{"system": info}

	if cpuPercent, err := util.GetCPUUsage(); err == nil {
		resp["cpu_percent"] = cpuPercent
	}
	if mem, err := util.GetMemoryUsage(); err == nil {
		resp["memory"] = mem
	}

	c.JSON(http.StatusOK, resp)
}
