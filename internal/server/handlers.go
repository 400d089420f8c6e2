package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"llm-quorum/internal/council"
	"llm-quorum/internal/storage"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type fetchURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// listConversations returns metadata for every conversation, newest first.
func (s *Server) listConversations(c *gin.Context) {
	summaries, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list conversations: %v", err)})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// createConversation creates an empty conversation under a fresh UUID.
func (s *Server) createConversation(c *gin.Context) {
	conv, err := s.store.Create(uuid.New().String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create conversation: %v", err)})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// getConversation returns one full conversation including all messages.
func (s *Server) getConversation(c *gin.Context) {
	conv, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to get conversation: %v", err)})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// sendMessage runs the full three-stage council synchronously and returns the
// complete four-part bundle. Model-level failures never turn into HTTP errors;
// the bundle always comes back structurally complete.
func (s *Server) sendMessage(c *gin.Context) {
	conversationID := c.Param("id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	conv, err := s.store.Get(conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to get conversation: %v", err)})
		return
	}

	isFirstMessage := len(conv.Messages) == 0

	if err := s.store.AppendUserMessage(conversationID, req.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to add user message: %v", err)})
		return
	}

	ctx := c.Request.Context()

	// Title generation overlaps the pipeline and is joined before the final
	// persistence below.
	titleCh := s.startTitleTask(ctx, isFirstMessage, req.Content)

	outcome, err := s.pipeline.Run(ctx, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Council process failed: %v", err)})
		return
	}

	if titleCh != nil {
		title := <-titleCh
		if err := s.store.SetTitle(conversationID, title); err != nil {
			s.logger.Warn("failed to persist title", "conversation", conversationID, "error", err)
		}
	}

	if err := s.store.AppendAssistantMessage(conversationID, outcome.Stage1, outcome.Stage2, outcome.Stage3); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to add assistant message: %v", err)})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// sendMessageStream runs the council while streaming per-stage progress over
// SSE. The event stream always terminates with complete or error: any panic
// escaping a stage is caught at this outermost scope and converted into one
// final error event, with whatever was already persisted left in place.
func (s *Server) sendMessageStream(c *gin.Context) {
	conversationID := c.Param("id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	conv, err := s.store.Get(conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to get conversation: %v", err)})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("streaming run panicked", "conversation", conversationID, "panic", r)
			s.sendEvent(c, council.Event{Type: council.EventError, Message: fmt.Sprintf("%v", r)})
		}
	}()

	isFirstMessage := len(conv.Messages) == 0

	if err := s.store.AppendUserMessage(conversationID, req.Content); err != nil {
		s.sendEvent(c, council.Event{Type: council.EventError, Message: fmt.Sprintf("Failed to add user message: %v", err)})
		return
	}

	ctx := c.Request.Context()
	titleCh := s.startTitleTask(ctx, isFirstMessage, req.Content)

	outcome, err := s.pipeline.Stream(ctx, req.Content, func(ev council.Event) {
		s.sendEvent(c, ev)
	})
	if err != nil {
		s.sendEvent(c, council.Event{Type: council.EventError, Message: fmt.Sprintf("Council process failed: %v", err)})
		return
	}

	if titleCh != nil {
		title := <-titleCh
		if err := s.store.SetTitle(conversationID, title); err != nil {
			s.logger.Warn("failed to persist title", "conversation", conversationID, "error", err)
		}
		s.sendEvent(c, council.Event{Type: council.EventTitleComplete, Data: gin.H{"title": title}})
	}

	if err := s.store.AppendAssistantMessage(conversationID, outcome.Stage1, outcome.Stage2, outcome.Stage3); err != nil {
		s.sendEvent(c, council.Event{Type: council.EventError, Message: fmt.Sprintf("Failed to save message: %v", err)})
		return
	}

	s.sendEvent(c, council.Event{Type: council.EventComplete})
}

// startTitleTask kicks off title generation when this is the conversation's
// first message. The returned channel yields exactly one title; nil means no
// task was started.
func (s *Server) startTitleTask(ctx context.Context, isFirstMessage bool, content string) <-chan string {
	if !isFirstMessage {
		return nil
	}
	ch := make(chan string, 1)
	go func() {
		ch <- s.summarizer.Title(ctx, content)
	}()
	return ch
}

// fetchURL extracts readable text from a web page for use as query context.
func (s *Server) fetchURL(c *gin.Context) {
	var req fetchURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	content, err := s.fetcher.FetchText(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch URL content: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

// sendEvent writes one SSE frame and flushes it.
func (s *Server) sendEvent(c *gin.Context, ev council.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to marshal event", "type", ev.Type, "error", err)
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}
