package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/sonicctl/internal/argspec"
	"github.com/danmuck/sonicctl/internal/auth"
	"github.com/danmuck/sonicctl/internal/config"
	"github.com/danmuck/sonicctl/internal/module"
	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
)

const maxDocumentBytes = 1 << 20

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.Use(auth.RequireBearer(s.validator))

	v1.GET("/resources", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"resources": s.registry.ListMetadata(),
		})
	})

	v1.GET("/devices", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"devices": s.connector.Devices(),
		})
	})

	v1.POST("/devices/:device/resources/:resource", s.handleRun)
}

func (s *Server) handleRun(c *gin.Context) {
	device := c.Param("device")
	resourceID := c.Param("resource")

	checkMode := false
	if raw := c.Query("check_mode"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "check_mode must be a boolean"})
			return
		}
		checkMode = v
	}

	res, err := s.registry.Lookup(resourceID)
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(doc) > maxDocumentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document too large"})
		return
	}

	target, err := s.connector.Connect(device)
	if err != nil {
		respondError(c, err)
		return
	}

	release, err := s.acquire(device, resourceID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer release()

	out, err := res.Execute(c.Request.Context(), target, doc, checkMode)
	if err != nil {
		log.Warn().
			Err(err).
			Str("device", device).
			Str("resource", resourceID).
			Msg("server.handleRun failed")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func respondError(c *gin.Context, err error) {
	var rcErr *restconf.Error
	switch {
	case errors.As(err, &rcErr):
		c.JSON(http.StatusBadGateway, gin.H{"msg": rcErr.Message, "code": rcErr.Code, "error": err.Error()})
	case errors.Is(err, resources.ErrUnknownResource), errors.Is(err, config.ErrUnknownDevice):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, argspec.ErrInvalidDocument),
		errors.Is(err, module.ErrInvalidConfig),
		errors.Is(err, state.ErrUnknownState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, state.ErrNotImplemented):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
