// Package server exposes the transformer over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianc/directify/internal/directify/preview"
	"github.com/kilianc/directify/internal/directify/transform"
)

const maxSourceBytes = 4 << 20

type transformRequest struct {
	Key    string `json:"key"`
	Source string `json:"source"`
}

type diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type transformResponse struct {
	Output      string       `json:"output"`
	Changed     bool         `json:"changed"`
	Cached      bool         `json:"cached"`
	Tasks       int          `json:"tasks"`
	Diagnostics []diagnostic `json:"diagnostics,omitempty"`
}

type Server struct {
	tr     *transform.Transformer
	logger *log.Logger
}

func New(tr *transform.Transformer, logger *log.Logger) *Server {
	if tr == nil {
		tr = transform.New(transform.Options{})
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{tr: tr, logger: logger}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger))
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSourceBytes)
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	v1 := r.Group("/v1")
	v1.POST("/transform", s.handleTransform)

	r.GET("/preview", s.handlePreview)
	r.POST("/preview", s.handlePreview)
	return r
}

func (s *Server) handleTransform(c *gin.Context) {
	var req transformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	res, err := s.tr.Run(strings.TrimSpace(req.Key), req.Source)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	out := transformResponse{
		Output:  res.Output,
		Changed: res.Changed,
		Cached:  res.Cached,
		Tasks:   res.Tasks,
	}
	for _, d := range res.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, diagnostic{Kind: string(d.Kind), Message: d.Message})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePreview(c *gin.Context) {
	page := preview.Page{Form: true, FormAction: "/preview"}
	if c.Request.Method == http.MethodPost {
		page.Source = c.PostForm("source")
	} else {
		page.Source = c.Query("source")
	}
	if page.Source != "" {
		res, err := s.tr.Run("", page.Source)
		page.Output = res.Output
		page.Diagnostics = res.Diagnostics
		page.Err = err
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := preview.Render(c.Writer, page); err != nil {
		s.logger.Printf("directify: preview render failed: err=%v", err)
	}
}

func requestLogger(l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Printf("directify: http: method=%s path=%s status=%d latency_ms=%d",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Milliseconds())
	}
}

// Run serves handler on listen until ctx is done.
func Run(ctx context.Context, listen string, handler http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("directify: listening: url=%q", "http://"+listen)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
