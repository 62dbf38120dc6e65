package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Milvus    MilvusConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Search    SearchConfig
	Translate TranslateConfig
	Ingestion IngestionConfig
	Corpora   CorporaConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host              string
	Port              int
	ReadTimeout       int
	WriteTimeout      int
	BodyLimit         int
	RequestsPerMinute int
}

type MilvusConfig struct {
	Endpoint  string
	VectorDim int
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	AnswerTTLMin int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
}

type SearchConfig struct {
	SerpAPIKey string
	MaxResults int
	TimeoutSec int
}

type TranslateConfig struct {
	APIKey         string
	TargetLanguage string
}

type IngestionConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	InsertBatchSize int
}

// CorpusConfig describes one watched directory with its own ingestion log
// and vector collection. Chunking is "fixed" or "semantic".
type CorpusConfig struct {
	DataDir    string
	LogFile    string
	Collection string
	Chunking   string
}

type CorporaConfig struct {
	General CorpusConfig
	Rules   CorpusConfig
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/nirmaan")

	viper.SetEnvPrefix("NIRMAAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 120)
	viper.SetDefault("server.bodyLimit", 1048576)
	viper.SetDefault("server.requestsPerMinute", 60)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.answerTTLMin", 60)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.maxTokens", 2048)
	viper.SetDefault("llm.timeoutSec", 60)
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")

	viper.SetDefault("search.maxResults", 3)
	viper.SetDefault("search.timeoutSec", 10)

	viper.SetDefault("translate.targetLanguage", "te")

	viper.SetDefault("ingestion.chunkSize", 1000)
	viper.SetDefault("ingestion.chunkOverlap", 150)
	viper.SetDefault("ingestion.insertBatchSize", 100)

	viper.SetDefault("corpora.general.dataDir", "./data")
	viper.SetDefault("corpora.general.logFile", "./processed_files.log")
	viper.SetDefault("corpora.general.collection", "code_general")
	viper.SetDefault("corpora.general.chunking", "fixed")

	viper.SetDefault("corpora.rules.dataDir", "./rules_data")
	viper.SetDefault("corpora.rules.logFile", "./processed_rules.log")
	viper.SetDefault("corpora.rules.collection", "code_rules")
	viper.SetDefault("corpora.rules.chunking", "semantic")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
