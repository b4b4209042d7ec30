// Package config loads runtime settings from the environment using viper,
// the way the rest of the pack (brokle-ai-brokle in particular) configures
// its services, rather than hand-rolled os.Getenv plumbing.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Settings struct {
	Port string

	RedisAddr     string
	RedisPassword string

	PostgresDSN string

	QdrantAddr       string
	QdrantCollection string

	BlobEndpoint  string
	BlobBucket    string
	BlobAccessKey string
	BlobSecretKey string
	BlobRegion    string

	JWTSecret   string
	CORSOrigins []string

	HealthbeatDir string

	AnalysisModelURL   string
	AnalysisModelKey   string
	ExtractionModelURL string
	ExtractionModelKey string
	ChatModelURL       string
	ChatModelKey       string
	EmbeddingModelURL  string
	EmbeddingModelKey  string
	EmbeddingDims      int

	ASRModelURL string
	ASRLanguage string
	FFmpegPath  string

	RateLimitPerMinute int
	MaxHistoryTurns    int
	RAGTopK            int
	RAGScoreThreshold  float64
}

// Load reads settings from the environment, applying defaults for anything
// the deployment doesn't override.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("healthbeat_dir", "/tmp/healthbeat")
	v.SetDefault("embedding_dims", 1536)
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("max_history_turns", 10)
	v.SetDefault("rag_top_k", 5)
	v.SetDefault("rag_score_threshold", 0.5)
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("asr_language", "es")
	v.SetDefault("qdrant_collection", "knowledge_chunks")

	s := &Settings{
		Port: v.GetString("port"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),

		PostgresDSN: v.GetString("postgres_dsn"),

		QdrantAddr:       v.GetString("qdrant_addr"),
		QdrantCollection: v.GetString("qdrant_collection"),

		BlobEndpoint:  v.GetString("blob_endpoint"),
		BlobBucket:    v.GetString("blob_bucket"),
		BlobAccessKey: v.GetString("blob_access_key"),
		BlobSecretKey: v.GetString("blob_secret_key"),
		BlobRegion:    v.GetString("blob_region"),

		JWTSecret:   v.GetString("jwt_secret"),
		CORSOrigins: splitCSV(v.GetString("cors_origins")),

		HealthbeatDir: v.GetString("healthbeat_dir"),

		AnalysisModelURL:   v.GetString("analysis_model_url"),
		AnalysisModelKey:   v.GetString("analysis_model_key"),
		ExtractionModelURL: v.GetString("extraction_model_url"),
		ExtractionModelKey: v.GetString("extraction_model_key"),
		ChatModelURL:       v.GetString("chat_model_url"),
		ChatModelKey:       v.GetString("chat_model_key"),
		EmbeddingModelURL:  v.GetString("embedding_model_url"),
		EmbeddingModelKey:  v.GetString("embedding_model_key"),
		EmbeddingDims:      v.GetInt("embedding_dims"),

		ASRModelURL: v.GetString("asr_model_url"),
		ASRLanguage: v.GetString("asr_language"),
		FFmpegPath:  v.GetString("ffmpeg_path"),

		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		MaxHistoryTurns:    v.GetInt("max_history_turns"),
		RAGTopK:            v.GetInt("rag_top_k"),
		RAGScoreThreshold:  v.GetFloat64("rag_score_threshold"),
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	var missing []string
	required := map[string]string{
		"REDIS_ADDR":         s.RedisAddr,
		"POSTGRES_DSN":       s.PostgresDSN,
		"QDRANT_ADDR":        s.QdrantAddr,
		"BLOB_ENDPOINT":      s.BlobEndpoint,
		"BLOB_BUCKET":        s.BlobBucket,
		"BLOB_ACCESS_KEY":    s.BlobAccessKey,
		"BLOB_SECRET_KEY":    s.BlobSecretKey,
		"JWT_SECRET":         s.JWTSecret,
		"CHAT_MODEL_URL":     s.ChatModelURL,
		"EMBEDDING_MODEL_URL": s.EmbeddingModelURL,
	}
	for name, val := range required {
		if val == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
