package server

import (
	"time"

	"talentscout/internal/ai"
	"talentscout/internal/config"
	"talentscout/internal/engine"
	talentscoutErrors "talentscout/internal/errors"
	"talentscout/internal/store"
	"talentscout/internal/types"
)

// ChatRequest represents the request body for the chat endpoint. A missing
// sessionId starts a new conversation.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse represents the response body for the chat endpoint
type ChatResponse struct {
	SessionID         string                `json:"sessionId"`
	Message           string                `json:"message"`
	ConversationEnded bool                  `json:"conversationEnded"`
	CandidateData     types.CandidateRecord `json:"candidateData"`
}

// ResetRequest represents the request body for the reset endpoint
type ResetRequest struct {
	SessionID string `json:"sessionId"`
}

// ResetResponse represents the response body for the reset endpoint
type ResetResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Conversation components
	AIService *ai.Service
	Engine    *engine.Engine
	Store     *store.CandidateStore
	Sessions  *SessionManager

	// System prompt hot reload
	PromptWatcher *PromptWatcher

	// Logger
	Logger *talentscoutErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	SessionTTL     time.Duration
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *talentscoutErrors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	aiService, err := ai.NewService(&appCfg.AI, logger)
	if err != nil {
		return nil, err
	}

	dialogueEngine := engine.New(aiService, logger,
		engine.WithSystemPrompt(func() string {
			if override := config.SystemPromptOverride(); override != "" {
				return override
			}
			return engine.DefaultSystemPrompt
		}))

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AIService:      aiService,
		Engine:         dialogueEngine,
		Store:          store.New(&appCfg.Store, logger),
		Sessions:       NewSessionManager(cfg.SessionTTL, logger),
		Logger:         logger,
	}, nil
}
