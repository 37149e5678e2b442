package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type docIngestor interface {
	Ingest(ctx context.Context, data []byte, name string) error
}

type apiHandler struct {
	log      *slog.Logger
	ingestor docIngestor
	answerer questionAnswerer
}

// NewHTTPServer builds the HTTP surface: document upload, question answering
// as an SSE stream, and a flat-text answer export.
func NewHTTPServer(ingestor docIngestor, answerer questionAnswerer, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := &apiHandler{
		log:      log,
		ingestor: ingestor,
		answerer: answerer,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	{
		api.POST("/documents", h.uploadDocument)
		api.POST("/ask", h.askQuestion)
		api.POST("/ask/export", h.exportAnswer)
	}

	return r
}

func (h *apiHandler) uploadDocument(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing document file: " + err.Error()})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ingestor.Ingest(c.Request.Context(), data, file.Filename); err != nil {
		h.log.Error("ingest failed", "doc", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "document": normalizeDocName(file.Filename)})
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// askQuestion streams the answer as SSE: one "retrieved" event with the raw
// candidate set for debugging, "token" events as fragments arrive, then
// "done" with the selected candidate positions. A mid-stream model failure
// becomes an "error" event so the client never mistakes a truncated answer
// for a complete one.
func (h *apiHandler) askQuestion(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ans, err := h.answerer.Answer(c.Request.Context(), req.Question)
	if err != nil {
		h.log.Error("answer failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if !ans.Found {
		c.JSON(http.StatusOK, gin.H{"found": false, "message": noRelevantInfo})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	c.SSEvent("retrieved", ans.Retrieved)
	c.Writer.Flush()

	for frag := range ans.Fragments {
		if frag.Err != nil {
			c.SSEvent("error", frag.Err.Error())
			c.Writer.Flush()
			return
		}

		c.SSEvent("token", frag.Text)
		c.Writer.Flush()
	}

	c.SSEvent("done", ans.RelevantIDs)
	c.Writer.Flush()
}

// exportAnswer materializes the full answer and returns it as a plain-text
// attachment.
func (h *apiHandler) exportAnswer(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ans, err := h.answerer.Answer(c.Request.Context(), req.Question)
	if err != nil {
		h.log.Error("answer failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if !ans.Found {
		c.JSON(http.StatusOK, gin.H{"found": false, "message": noRelevantInfo})
		return
	}

	var full strings.Builder
	for frag := range ans.Fragments {
		if frag.Err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "answer interrupted: " + frag.Err.Error()})
			return
		}
		full.WriteString(frag.Text)
	}

	c.Header("Content-Disposition", `attachment; filename=answer.txt`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(full.String()))
}
