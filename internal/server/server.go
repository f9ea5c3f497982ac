// Package server exposes the downloader over HTTP for non-Go consumers.
package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/felclient"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server. All invoice operations go through one
// felclient.Client, which serializes them onto the single portal session.
type Server struct {
	config *Config
	router *gin.Engine
	client *felclient.Client
	log    zerolog.Logger
}

// NewServer creates a new API server around an existing client.
func NewServer(config *Config, client *felclient.Client, log zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		client: client,
		log:    log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/invoices/search", s.handleSearch)
		v1.POST("/invoices/download", s.handleDownload)
		v1.POST("/invoices/parse", s.handleParse)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	filter, err := req.Filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date, expected YYYY-MM-DD: " + err.Error()})
		return
	}

	summaries, err := s.client.Invoices(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		Count:    len(summaries),
		Invoices: summaries,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	format := felclient.Format(req.Format)
	if format != felclient.FormatPDF && format != felclient.FormatXML {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "format must be pdf or xml"})
		return
	}
	dir := model.Direction(req.Direction)
	if dir == "" {
		dir = model.DirectionReceived
	}

	doc, err := s.client.Fetch(c.Request.Context(), req.Summary, format, dir)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if req.Validate && format == felclient.FormatPDF {
		if err := felclient.ValidatePDF(doc.Content); err != nil {
			s.writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, DownloadResponse{
		Filename:   felclient.Filename(doc, req.Summary, format),
		Provenance: doc.Provenance.String(),
		Content:    base64.StdEncoding.EncodeToString(doc.Content),
	})
}

func (s *Server) handleParse(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	invoice, err := felclient.ParseInvoice(body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParseResponse{Invoice: invoice})
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway

	var authErr *model.AuthenticationError
	var confErr *model.ConfigurationError
	var transErr *model.TransportError
	var docErr *model.MalformedDocumentError
	var integrityErr *model.IntegrityError

	switch {
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &confErr):
		status = http.StatusInternalServerError
	case errors.As(err, &transErr):
		if transErr.Timeout {
			status = http.StatusGatewayTimeout
		}
	case errors.As(err, &docErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &integrityErr):
		status = http.StatusUnprocessableEntity
	}

	s.log.Error().Err(err).Int("status", status).Msg("request failed")
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
