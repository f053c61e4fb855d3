// Package server exposes the relevance engine over HTTP for the web
// application frontend.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dzhu8/GoFetch-sub002/internal/ocr"
	"github.com/dzhu8/GoFetch-sub002/internal/refextract"
	"github.com/dzhu8/GoFetch-sub002/internal/snowball"
	"github.com/dzhu8/GoFetch-sub002/internal/storage"
)

// Server wires the engine and optional run store into HTTP handlers.
type Server struct {
	engine *snowball.Engine
	store  *storage.DB // nil disables persistence
	log    *zap.Logger
}

// New creates a Server. store may be nil.
func New(engine *snowball.Engine, store *storage.DB, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: engine, store: store, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())

	r.GET("/healthz", s.health)
	r.POST("/api/v1/extract", s.extract)
	r.POST("/api/v1/related", s.related)
	r.GET("/api/v1/runs", s.listRuns)
	r.GET("/api/v1/runs/:id", s.getRun)

	return r
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// relatedRequest accepts either a raw OCR document or pre-extracted
// search terms. When a document is present it wins: terms and seed
// metadata are derived from it.
type relatedRequest struct {
	Document    json.RawMessage `json:"document,omitempty"`
	SearchTerms []string        `json:"searchTerms,omitempty"`
	IsDOI       []bool          `json:"isDoiFlags,omitempty"`
	SeedTitle   string          `json:"seedTitle,omitempty"`
	SeedDOI     string          `json:"seedDoi,omitempty"`
}

type relatedResponse struct {
	RequestID string `json:"requestId"`
	RunID     string `json:"runId,omitempty"`
	*snowball.Result
}

func (s *Server) related(c *gin.Context) {
	var req relatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engineReq := snowball.Request{
		SearchTerms: req.SearchTerms,
		IsDOI:       req.IsDOI,
		SeedTitle:   req.SeedTitle,
		SeedDOI:     req.SeedDOI,
	}

	if len(req.Document) > 0 {
		doc, err := ocr.ParseDocument(req.Document)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		refs := refextract.Extract(doc)
		meta := refextract.ExtractMetadata(doc)
		engineReq = snowball.Request{
			SeedTitle: meta.Title,
			SeedDOI:   meta.DOI,
		}
		for _, ref := range refs {
			engineReq.SearchTerms = append(engineReq.SearchTerms, ref.SearchTerm)
			engineReq.IsDOI = append(engineReq.IsDOI, ref.IsDOI)
		}
	}

	res, err := s.engine.Run(c.Request.Context(), engineReq)
	if err != nil {
		if errors.Is(err, snowball.ErrEmptyRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("engine run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "relevance run failed"})
		return
	}

	resp := relatedResponse{
		RequestID: c.GetString("request_id"),
		Result:    res,
	}
	if s.store != nil {
		runID, err := s.store.SaveRun(engineReq, res)
		if err != nil {
			s.log.Warn("persisting run failed", zap.Error(err))
		} else {
			resp.RunID = runID
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) extract(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading request body failed"})
		return
	}
	doc, err := ocr.ParseDocument(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refs := refextract.Extract(doc)
	if refs == nil {
		refs = []refextract.ParsedReference{}
	}
	c.JSON(http.StatusOK, gin.H{
		"references": refs,
		"metadata":   refextract.ExtractMetadata(doc),
	})
}

func (s *Server) listRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run persistence disabled"})
		return
	}
	runs, err := s.store.ListRuns(0)
	if err != nil {
		s.log.Error("listing runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing runs failed"})
		return
	}
	if runs == nil {
		runs = []storage.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run persistence disabled"})
		return
	}
	run, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
