// Package httpapi exposes a line ingestion endpoint over HTTP.
package httpapi

import (
	"bufio"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/trviph/linekeeper"
)

// Largest single line accepted by /write.
const maxLineSize = linekeeper.Mb

// Sink receives ingested lines.
type Sink interface {
	WriteLine(line string) error
	Emit() error
}

// Status codes of [Resp].
type Status uint8

const (
	RespOK Status = iota
	RespErrorInvalidRequest
	RespErrorWriteFailed
	RespErrorFlushFailed
)

func (s Status) String() string {
	switch s {
	case RespOK:
		return "ok"
	case RespErrorInvalidRequest:
		return "invalid request"
	case RespErrorWriteFailed:
		return "write failed"
	case RespErrorFlushFailed:
		return "flush failed"
	default:
		return "unknown"
	}
}

// Resp is the body of every JSON response.
type Resp struct {
	Code Status      `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

type Server struct {
	ge     *gin.Engine
	sink   Sink
	logger zerolog.Logger
}

// New returns a Server writing to sink and serving the metrics of gatherer.
// A nil gatherer disables /metrics.
func New(sink Sink, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Server{
		ge:     r,
		sink:   sink,
		logger: logger,
	}
	s.attach(gatherer)
	return s
}

func (s *Server) attach(gatherer prometheus.Gatherer) {
	s.ge.POST("/write", s.Write)
	s.ge.POST("/flush", s.Flush)
	s.ge.GET("/version", s.Version)
	if gatherer != nil {
		s.ge.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ge
}

// Write admits every non-empty line of the request body.
func (s *Server) Write(c *gin.Context) {
	scanner := bufio.NewScanner(c.Request.Body)
	scanner.Buffer(make([]byte, 0, 64*linekeeper.Kb), maxLineSize)

	lines := 0
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if err := s.sink.WriteLine(line); err != nil {
			s.logger.Error().Err(err).Int("accepted", lines).Msg("failed to write line")
			s.respond(c, http.StatusInternalServerError, RespErrorWriteFailed, gin.H{"lines": lines})
			return
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		s.respond(c, http.StatusBadRequest, RespErrorInvalidRequest, gin.H{"lines": lines, "error": err.Error()})
		return
	}
	s.logger.Debug().Int("lines", lines).Msg("lines accepted")
	s.respond(c, http.StatusOK, RespOK, gin.H{"lines": lines})
}

// Flush writes pending lines immediately.
func (s *Server) Flush(c *gin.Context) {
	if err := s.sink.Emit(); err != nil {
		s.logger.Error().Err(err).Msg("failed to flush")
		s.respond(c, http.StatusInternalServerError, RespErrorFlushFailed, nil)
		return
	}
	s.respond(c, http.StatusOK, RespOK, nil)
}

func (s *Server) Version(c *gin.Context) {
	s.respond(c, http.StatusOK, RespOK, gin.H{"version": linekeeper.Version()})
}

func (s *Server) respond(c *gin.Context, httpStatus int, code Status, data interface{}) {
	c.JSON(httpStatus, Resp{
		Code: code,
		Msg:  code.String(),
		Data: data,
	})
}
