package app

import (
	"time"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/utils"
)

type Config struct {
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	// OCRProvider selects the page transcriber: "gcp" or "ollama".
	OCRProvider string

	MinSuggestionConfidence float64
	CategorizeMaxDepth      int
	MatcherDepthClamp       int
	FuzzyMatchThreshold     float64
	FuzzyMatchTopN          int

	AllowedOrigins string
	TracingEnabled bool
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	return Config{
		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,

		OCRProvider: utils.GetEnv("OCR_PROVIDER", "ollama", log),

		MinSuggestionConfidence: utils.GetEnvAsFloat("MIN_SUGGESTION_CONFIDENCE", 0.3, log),
		CategorizeMaxDepth:      utils.GetEnvAsInt("CATEGORIZE_MAX_DEPTH", 5, log),
		MatcherDepthClamp:       utils.GetEnvAsInt("MATCHER_DEPTH_CLAMP", 5, log),
		FuzzyMatchThreshold:     utils.GetEnvAsFloat("FUZZY_MATCH_THRESHOLD", 0.6, log),
		FuzzyMatchTopN:          utils.GetEnvAsInt("FUZZY_MATCH_TOP_N", 3, log),

		AllowedOrigins: utils.GetEnv("ALLOWED_ORIGINS", "", log),
		TracingEnabled: utils.GetEnv("OTEL_ENABLED", "false", log) == "true",
	}
}
