// Package server exposes a finished embedding table over HTTP. The table is
// read-only once written, so the server holds it in memory with no locking.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/table"
)

type Server struct {
	Table  *table.Table
	Logger *zap.Logger
}

func NewServer(t *table.Table, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Table: t, Logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.GET("/meta", s.Meta)
	r.GET("/embeddings", s.ListIdentifiers)
	// Identifiers are full IRIs, so lookup takes a query parameter instead
	// of a path segment.
	r.GET("/embedding", s.GetEmbedding)
	r.POST("/similar", s.Similar)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rows": s.Table.Len()})
}

func (s *Server) Meta(c *gin.Context) {
	m := s.Table.Meta()
	c.JSON(http.StatusOK, gin.H{
		"source_ontology": m.SourceOntology,
		"arch":            m.Arch,
		"loss":            m.Loss,
		"scheme":          m.Scheme,
		"output_dim":      m.OutputDim,
		"checkpoint_run":  m.CheckpointRun,
		"generated_at":    m.GeneratedAt,
		"rows":            s.Table.Len(),
	})
}

func (s *Server) ListIdentifiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"identifiers": s.Table.Identifiers()})
}

func (s *Server) GetEmbedding(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id query parameter is required"})
		return
	}
	vec, ok := s.Table.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown identifier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "vector": vec})
}

type SimilarRequest struct {
	ID     string    `json:"id"`
	Vector []float64 `json:"vector"`
	K      int       `json:"k"`
}

// Similar ranks table rows by cosine similarity against either a stored
// identifier or a raw query vector.
func (s *Server) Similar(c *gin.Context) {
	var req SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	query := req.Vector
	if req.ID != "" {
		vec, ok := s.Table.Get(req.ID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown identifier"})
			return
		}
		query = vec
	}
	if len(query) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either id or vector is required"})
		return
	}

	k := req.K
	if k <= 0 {
		k = 5
	}
	c.JSON(http.StatusOK, gin.H{"results": s.Table.Nearest(query, k)})
}
