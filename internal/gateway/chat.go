package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"astrin/internal/chat"
)

// In-band notices returned as the chat response when the model cannot answer.
const (
	NoticeInterference = "⚠️ Cosmic interference! Unable to reach Astrin's thought stream."
	NoticeLostSignal   = "🌌 Astrin lost signal in deep space. Please try again shortly."
)

const maxRequestBytes = 1 << 20

// Completer answers one user prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionStatusError reports a completion request the provider answered
// with a non-success status.
type CompletionStatusError struct {
	Code int
	Err  error
}

func (e *CompletionStatusError) Error() string {
	return fmt.Sprintf("completion failed with status %d: %v", e.Code, e.Err)
}

func (e *CompletionStatusError) Unwrap() error { return e.Err }

type chatRequest struct {
	Message *string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == nil {
		Error(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	reply, err := s.completer.Complete(r.Context(), *req.Message)
	if err != nil {
		var statusErr *CompletionStatusError
		if errors.As(err, &statusErr) {
			s.logger.Warn("chat completion rejected", zap.Int("status", statusErr.Code), zap.Error(err))
			reply = NoticeInterference
		} else {
			s.logger.Warn("chat completion failed", zap.Error(err))
			reply = NoticeLostSignal
		}
	}
	JSON(w, http.StatusOK, chatResponse{Response: reply})
}

type historyMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var in []historyMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages := make([]chat.Message, 0, len(in))
	for i, m := range in {
		if m.Sender == "" || m.Timestamp == "" {
			Error(w, http.StatusUnprocessableEntity, fmt.Sprintf("message %d: sender and timestamp are required", i))
			return
		}
		id := strings.TrimSpace(m.ID)
		if id == "" {
			id = uuid.NewString()
		}
		messages = append(messages, chat.Message{
			ID:        id,
			Text:      m.Text,
			Sender:    chat.Sender(m.Sender),
			Timestamp: m.Timestamp,
		})
	}

	saved, err := s.history.SaveMessages(r.Context(), messages)
	if err != nil {
		s.logger.Error("failed to save chat history", zap.Error(err))
		Error(w, http.StatusInternalServerError, "Failed to save chat history: "+err.Error())
		return
	}
	s.logger.Debug("chat history saved", zap.Int("received", len(messages)), zap.Int("new", saved))
	JSON(w, http.StatusOK, map[string]string{"message": "Chat history saved successfully"})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	messages, err := s.history.ListMessages(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list chat history", zap.Error(err))
		Error(w, http.StatusInternalServerError, "Failed to load chat history.")
		return
	}
	JSON(w, http.StatusOK, messages)
}
