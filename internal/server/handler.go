package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"talentscout/internal/common"
	"talentscout/internal/observability"
	"talentscout/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createChatHandler wraps the chat handler with observability
func (s *Server) createChatHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentscout.api")
		ctx, span := tracer.Start(ctx, "api.chat")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Parse request
		var req ChatRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Validation
		if err := common.ValidateMessage(req.Message, s.AppConfig.App.MaxMessageLength); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid message", err.Error(), http.StatusBadRequest)
			return
		}

		// Resolve the session: a missing ID starts a new conversation
		var session *Session
		if req.SessionID == "" {
			session = s.Sessions.Create()
		} else {
			session = s.Sessions.Get(req.SessionID)
			if session == nil {
				err := fmt.Errorf("unknown session: %s", req.SessionID)
				span.RecordError(err)
				span.SetAttributes(attribute.String("error.type", "session"))
				writeErrorResponse(w, "Session not found", "sessionId does not match an active session", http.StatusNotFound)
				return
			}
		}

		session.Lock()
		defer session.Unlock()

		if session.Ended {
			writeErrorResponse(w, "Conversation ended", "This conversation has ended. Send a reset request or start a new session.", http.StatusConflict)
			return
		}

		span.SetAttributes(
			attribute.String("session.id", session.ID),
			attribute.Int("request.message_length", len(req.Message)),
			attribute.Int("session.history_turns", len(session.History)),
			attribute.String("operation", "chat"),
		)

		fieldsBefore := len(session.Record)

		// Track AI operation with observability and token usage
		metrics := om.GetMetrics()
		var result types.TurnResult
		err := metrics.TrackAIOperationWithTokens(ctx, "chat", func(ctx context.Context) *observability.AIOperationResult {
			turn := s.Engine.Respond(ctx, req.Message, session.History, session.Record)
			result = turn
			// The engine degrades AI failures into an apology reply, so the
			// tracked operation itself is considered successful.
			return &observability.AIOperationResult{}
		}, om)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			writeErrorResponse(w, "Failed to process message", err.Error(), http.StatusInternalServerError)
			return
		}

		// Advance session state
		session.Record = result.CandidateData
		session.History = append(session.History,
			types.ConversationTurn{Role: types.RoleUser, Content: req.Message},
			types.ConversationTurn{Role: types.RoleAssistant, Content: result.Message},
		)
		session.Ended = result.ConversationEnded

		metrics.RecordBusinessMetric(ctx, "conversation_turn", true, om,
			attribute.Bool("ended", result.ConversationEnded))

		fieldsAdded := len(result.CandidateData) - fieldsBefore
		if fieldsAdded > 0 {
			metrics.RecordBusinessMetric(ctx, "fields_extracted", true, om,
				attribute.Int("fields_added", fieldsAdded))
		}

		// Persist the record when the conversation completes
		if result.ConversationEnded {
			if err := s.Store.Append(ctx, result.CandidateData); err != nil {
				span.RecordError(err)
				s.Logger.LogError(err, "Failed to persist candidate record",
					"session_id", session.ID)
			}
			metrics.RecordBusinessMetric(ctx, "conversation_completed", true, om,
				attribute.Int("fields_collected", len(result.CandidateData)))
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("conversation.ended", result.ConversationEnded),
			attribute.Int("record.fields", len(result.CandidateData)),
		)

		resp := ChatResponse{
			SessionID:         session.ID,
			Message:           result.Message,
			ConversationEnded: result.ConversationEnded,
			CandidateData:     result.CandidateData,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createResetHandler wraps the reset handler with observability
func (s *Server) createResetHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("talentscout.api")
		_, span := tracer.Start(r.Context(), "api.reset")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ResetRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.SessionID == "" {
			err := fmt.Errorf("missing session id")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing session id", "sessionId field is required", http.StatusBadRequest)
			return
		}

		session := s.Sessions.Reset(req.SessionID)
		if session == nil {
			err := fmt.Errorf("unknown session: %s", req.SessionID)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "session"))
			writeErrorResponse(w, "Session not found", "sessionId does not match an active session", http.StatusNotFound)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", session.ID),
		)

		resp := ResetResponse{
			SessionID: session.ID,
			Message:   "Conversation reset",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
