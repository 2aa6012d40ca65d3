package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseroom/meeting-pipeline/analysis"
	"github.com/pulseroom/meeting-pipeline/orchestrator"
	"github.com/pulseroom/meeting-pipeline/store"
)

type analyzeRequest struct {
	Source string `json:"source" binding:"required"`
}

// analyzeMeeting runs the blocking whole-meeting analysis.
func (s *Server) analyzeMeeting(c *gin.Context) {
	meetingID := c.Param("id")

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.observe("analyze", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}

	ma, err := s.pipeline.RunFull(c.Request.Context(), req.Source, meetingID)
	if err != nil {
		status, kind := errorStatus(err)
		s.observe("analyze", status)
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	s.observe("analyze", http.StatusOK)
	c.JSON(http.StatusOK, ma)
}

// getMeeting retrieves a stored analysis.
func (s *Server) getMeeting(c *gin.Context) {
	if s.store == nil {
		s.observe("get", http.StatusNotImplemented)
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no store configured"})
		return
	}
	ma, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.observe("get", http.StatusNotFound)
			c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
			return
		}
		s.observe("get", http.StatusInternalServerError)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.observe("get", http.StatusOK)
	c.JSON(http.StatusOK, ma)
}

// streamMeeting delivers segment analyses as server-sent events followed
// by a terminal "complete" or "error" event. Client disconnect cancels
// the session through the request context.
func (s *Server) streamMeeting(c *gin.Context) {
	meetingID := c.Param("id")
	source := c.Query("source")
	if source == "" {
		s.observe("stream", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, gin.H{"error": "source query parameter is required"})
		return
	}

	session := s.pipeline.RunStream(c.Request.Context(), source, meetingID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	s.observe("stream", http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-session.Events()
		if !ok {
			return false
		}
		switch ev.Type {
		case orchestrator.EventSegment:
			c.SSEvent("segment", ev.Segment)
		case orchestrator.EventComplete:
			c.SSEvent("complete", ev.Analysis)
		case orchestrator.EventError:
			c.SSEvent("error", gin.H{"error": ev.Err.Error()})
		}
		return true
	})
}

// errorStatus maps the error taxonomy onto HTTP statuses.
func errorStatus(err error) (int, string) {
	var ive *analysis.InputValidationError
	if errors.As(err, &ive) {
		return http.StatusBadRequest, "input_validation"
	}
	var te *analysis.TranscriptionError
	if errors.As(err, &te) {
		return http.StatusBadGateway, "transcription"
	}
	var ae *analysis.AggregationError
	if errors.As(err, &ae) {
		return http.StatusInternalServerError, "aggregation"
	}
	return http.StatusInternalServerError, "internal"
}
