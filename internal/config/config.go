package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how the reference document is split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig configures nearest-neighbor retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// GeminiConfig holds settings for the Gemini embedding and chat models.
type GeminiConfig struct {
	APIKeyEnv       string  `yaml:"api_key_env"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	ChatModel       string  `yaml:"chat_model"`
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
}

// AgentConfig holds the conversational persona and canned phrases.
type AgentConfig struct {
	Company  string `yaml:"company"`
	Persona  string `yaml:"persona"`
	Greeting string `yaml:"greeting"`
	Farewell string `yaml:"farewell"`
	// RecordDegradedTurns controls whether a failed retrieval/generation
	// still records the user utterance with the degraded reply.
	RecordDegradedTurns bool `yaml:"record_degraded_turns"`
}

// ASRConfig contains connection details for the speech-recognition service.
type ASRConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// TTSConfig contains connection details for the text-to-speech service.
type TTSConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	OutputDir   string `yaml:"output_dir"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	// DocumentPath is the reference document indexed at startup.
	DocumentPath string          `yaml:"document_path"`
	WatchDoc     bool            `yaml:"watch_doc"`
	Chunker      ChunkerConfig   `yaml:"chunker"`
	Retrieval    RetrievalConfig `yaml:"retrieval"`
	Gemini       GeminiConfig    `yaml:"gemini"`
	Agent        AgentConfig     `yaml:"agent"`
	ASR          ASRConfig       `yaml:"asr"`
	TTS          TTSConfig       `yaml:"tts"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/assist/config.yaml.
// If neither exists, it writes defaults to ~/.config/assist/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "assist", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		DocumentPath: "uploads/guidelines.txt",
		Chunker:      ChunkerConfig{ChunkSize: 1000, ChunkOverlap: 200},
		Retrieval:    RetrievalConfig{TopK: 5},
		Gemini: GeminiConfig{
			APIKeyEnv:       "GEMINI_API_KEY",
			EmbeddingModel:  "text-embedding-004",
			ChatModel:       "gemini-2.0-flash",
			Temperature:     0.7,
			TopP:            0.9,
			MaxOutputTokens: 200,
			TimeoutSecs:     30,
		},
		Agent: AgentConfig{
			Company:  "CRED",
			Persona:  "customer care agent for CRED-Help",
			Greeting: "Good morning, thank you for contacting CRED-Help. How can I assist you today?",
			Farewell: "Thank you for reaching out to CRED. Have a great day!",
		},
		ASR: ASRConfig{TimeoutSecs: 60},
		TTS: TTSConfig{OutputDir: "responses", TimeoutSecs: 60},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.ChunkSize <= 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.ChunkOverlap < 0 {
		cfg.Chunker.ChunkOverlap = 0
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Gemini.APIKeyEnv == "" {
		cfg.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Gemini.EmbeddingModel == "" {
		cfg.Gemini.EmbeddingModel = "text-embedding-004"
	}
	if cfg.Gemini.ChatModel == "" {
		cfg.Gemini.ChatModel = "gemini-2.0-flash"
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = 0.7
	}
	if cfg.Gemini.TopP == 0 {
		cfg.Gemini.TopP = 0.9
	}
	if cfg.Gemini.MaxOutputTokens == 0 {
		cfg.Gemini.MaxOutputTokens = 200
	}
	if cfg.Gemini.TimeoutSecs == 0 {
		cfg.Gemini.TimeoutSecs = 30
	}
	if cfg.Agent.Greeting == "" {
		cfg.Agent.Greeting = "Good morning, thank you for contacting CRED-Help. How can I assist you today?"
	}
	if cfg.Agent.Farewell == "" {
		cfg.Agent.Farewell = "Thank you for reaching out to CRED. Have a great day!"
	}
	if cfg.Agent.Persona == "" {
		cfg.Agent.Persona = "customer care agent for CRED-Help"
	}
	if cfg.Agent.Company == "" {
		cfg.Agent.Company = "CRED"
	}
	if cfg.ASR.TimeoutSecs == 0 {
		cfg.ASR.TimeoutSecs = 60
	}
	if cfg.TTS.TimeoutSecs == 0 {
		cfg.TTS.TimeoutSecs = 60
	}
	if cfg.TTS.OutputDir == "" {
		cfg.TTS.OutputDir = "responses"
	}
}
