package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Cache    CacheConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type CatalogConfig struct {
	BaseURL    string
	BasicAuth  string // pre-encoded Basic token, empty disables auth
	TotalPages int
	ChunkSize  int
	PageDelay  time.Duration
	ChunkDelay time.Duration
	Timeout    time.Duration

	// IDFallbackPolicy: "synthesize" keeps records without a natural id by
	// generating one (re-indexing then duplicates them); "reject" skips them.
	IDFallbackPolicy string

	SyncTopic string // in-process topic triggering reindex after a sync
}

type CacheConfig struct {
	FormationsTTL time.Duration
	SessionsTTL   time.Duration
	SearchTTL     time.Duration
}

type AIConfig struct {
	OpenAIAPIKey        string
	EmbeddingModel      string
	EmbeddingDimensions int
	LLMModel            string
	ProviderTimeout     time.Duration
	SearchLimit         int
	ChatMode            string // "rag" or "simple"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Catalog: CatalogConfig{
			BaseURL:          getEnv("OO2_BASE_URL", "https://www.oo2.fr/webservices"),
			BasicAuth:        getEnv("OO2_BASIC_AUTH", ""),
			TotalPages:       getEnvAsInt("OO2_TOTAL_PAGES", 16),
			ChunkSize:        getEnvAsInt("OO2_CHUNK_SIZE", 4),
			PageDelay:        getEnvAsDuration("OO2_PAGE_DELAY", 500*time.Millisecond),
			ChunkDelay:       getEnvAsDuration("OO2_CHUNK_DELAY", 200*time.Millisecond),
			Timeout:          getEnvAsDuration("OO2_HTTP_TIMEOUT", 300*time.Second),
			IDFallbackPolicy: getEnv("ID_FALLBACK_POLICY", "synthesize"),
			SyncTopic:        getEnv("CATALOG_SYNC_TOPIC_NAME", "CATALOG_SYNC_COMPLETED"),
		},
		Cache: CacheConfig{
			FormationsTTL: getEnvAsDuration("FORMATIONS_CACHE_TTL", 7*24*time.Hour),
			SessionsTTL:   getEnvAsDuration("SESSIONS_CACHE_TTL", 6*time.Hour),
			SearchTTL:     getEnvAsDuration("SEARCH_CACHE_TTL", time.Hour),
		},
		Ai: AIConfig{
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			ProviderTimeout:     getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
			SearchLimit:         getEnvAsInt("SEARCH_LIMIT", 5),
			ChatMode:            getEnv("CHAT_MODE", "rag"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
