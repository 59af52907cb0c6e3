// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the harvested corpus over a small read-only HTTP
// API with an HTML index for browsing.
// Implements: prd004-store (R4).
package web

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// PaperStore is the read-only slice of the record store the server needs.
type PaperStore interface {
	Query(ctx context.Context, filters map[string]any) ([]types.PaperRecord, error)
	Get(ctx context.Context, id string) (types.PaperRecord, bool, error)
}

// paperListItem is the trimmed list view. The extracted text and the
// summary stay behind the detail endpoint so listings stay small.
type paperListItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Conference     string `json:"conference"`
	Year           int    `json:"year"`
	Track          string `json:"track"`
	SubmissionType string `json:"submission_type,omitempty"`
	Platform       string `json:"platform"`
	Processed      bool   `json:"processed"`
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>paper-digest</title></head>
<body>
<h1>Harvested papers</h1>
<ul>
{{- range .Papers}}
<li><a href="/api/papers/{{.ID}}">{{.Title}}</a>{{if not .Processed}} (pending){{end}}</li>
{{- end}}
</ul>
<p>{{.Count}} papers</p>
</body>
</html>
`))

// Server exposes harvested papers over HTTP. All routes are reads; the
// corpus is mutated only by the harvest pipeline and the papers CLI.
type Server struct {
	store  PaperStore
	log    *zap.Logger
	router *gin.Engine
}

// NewServer builds the router over the given store.
func NewServer(store PaperStore, log *zap.Logger) *Server {
	s := &Server{store: store, log: log}

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(indexTmpl)

	router.GET("/healthz", s.healthz)
	router.GET("/", s.index)
	api := router.Group("/api")
	api.GET("/papers", s.listPapers)
	api.GET("/papers/:id", s.getPaper)

	s.router = router
	return s
}

// Run starts the server on addr and blocks until it fails.
func (s *Server) Run(addr string) error {
	s.log.Info("serving papers", zap.String("addr", addr))
	return s.router.Run(addr)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listPapers(c *gin.Context) {
	filters := map[string]any{}
	if v := c.Query("conference"); v != "" {
		filters["conference"] = v
	}
	if v := c.Query("track"); v != "" {
		filters["track"] = v
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
			return
		}
		filters["year"] = year
	}

	records, err := s.store.Query(c.Request.Context(), filters)
	if err != nil {
		s.log.Error("listing papers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]paperListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, paperListItem{
			ID:             rec.ID,
			Title:          rec.Title,
			Conference:     rec.Conference,
			Year:           rec.Year,
			Track:          rec.Track,
			SubmissionType: rec.SubmissionType,
			Platform:       rec.Platform,
			Processed:      rec.Processed(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"papers": items, "count": len(items)})
}

func (s *Server) getPaper(c *gin.Context) {
	id := c.Param("id")
	rec, found, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.log.Error("paper lookup failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "paper not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) index(c *gin.Context) {
	records, err := s.store.Query(c.Request.Context(), nil)
	if err != nil {
		s.log.Error("index query failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "query failed")
		return
	}
	c.HTML(http.StatusOK, "index", gin.H{
		"Papers": records,
		"Count":  len(records),
	})
}
