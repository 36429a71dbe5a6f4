// Package config loads process settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrConfigurationMissing = errors.New("configuration missing")

type LLM struct {
	Backend       string        `mapstructure:"backend"`
	Model         string        `mapstructure:"model"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`
	OpenAIKey     string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL string        `mapstructure:"openai_base_url"`
	OpenRouterKey string        `mapstructure:"openrouter_api_key"`
	OllamaBaseURL string        `mapstructure:"ollama_base_url"`
	GeminiKey     string        `mapstructure:"gemini_api_key"`
}

type Pipeline struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	PromptsDir   string        `mapstructure:"prompts_dir"`
}

type Document struct {
	MaxChars       int      `mapstructure:"max_chars"`
	MaxUploadBytes int      `mapstructure:"max_upload_bytes"`
	Formats        []string `mapstructure:"formats"`
}

type Jobs struct {
	Limit                int           `mapstructure:"limit"`
	SourceTimeout        time.Duration `mapstructure:"source_timeout"`
	MinDelay             time.Duration `mapstructure:"min_delay"`
	MaxDelay             time.Duration `mapstructure:"max_delay"`
	RapidAPIKey          string        `mapstructure:"rapidapi_key"`
	TranslateCredentials string        `mapstructure:"translate_credentials"`
}

// Settings is read once at start-up and never modified.
type Settings struct {
	LLM      LLM      `mapstructure:"llm"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Document Document `mapstructure:"document"`
	Jobs     Jobs     `mapstructure:"jobs"`

	DatabasePath string `mapstructure:"database_path"`
	ListenAddr   string `mapstructure:"listen_addr"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
}

// Credential names accepted by Require.
const (
	OpenAIAPIKey     = "OPENAI_API_KEY"
	OpenRouterAPIKey = "OPENROUTER_API_KEY"
	GeminiAPIKey     = "GEMINI_API_KEY"
	RapidAPIKey      = "RAPIDAPI_KEY"
)

// aliases are the conventional variable names read besides the prefixed ones.
var aliases = map[string]string{
	"llm.openai_api_key":         OpenAIAPIKey,
	"llm.openrouter_api_key":     OpenRouterAPIKey,
	"llm.gemini_api_key":         GeminiAPIKey,
	"jobs.rapidapi_key":          RapidAPIKey,
	"jobs.translate_credentials": "GOOGLE_APPLICATION_CREDENTIALS",
}

// New returns a viper instance with defaults and environment bindings set.
// Flags may be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("llm.backend", "openai")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.ollama_base_url", "http://localhost:11434")

	v.SetDefault("pipeline.max_retries", 2)
	v.SetDefault("pipeline.stage_timeout", 90*time.Second)
	v.SetDefault("pipeline.prompts_dir", "")

	v.SetDefault("document.max_chars", 20000)
	v.SetDefault("document.max_upload_bytes", 5<<20)
	v.SetDefault("document.formats", []string{"txt", "md", "docx"})

	v.SetDefault("jobs.limit", 10)
	v.SetDefault("jobs.source_timeout", 15*time.Second)
	v.SetDefault("jobs.min_delay", time.Second)
	v.SetDefault("jobs.max_delay", 2*time.Second)

	v.SetDefault("database_path", "./data/cvadvisor.db")
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvPrefix("CVADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range aliases {
		prefixed := "CVADVISOR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, alias)
	}
	return v
}

// Load reads file (or cvadvisor.yaml from the working directory and
// $HOME/.config/cvadvisor when file is empty) and decodes the result. A
// missing default file is not an error.
func Load(v *viper.Viper, file string) (*Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("cvadvisor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cvadvisor"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	s.LLM.Backend = strings.ToLower(strings.TrimSpace(s.LLM.Backend))
	if s.Jobs.MaxDelay < s.Jobs.MinDelay {
		s.Jobs.MaxDelay = s.Jobs.MinDelay
	}
	return &s, nil
}

func (s *Settings) credential(name string) (string, bool) {
	switch name {
	case OpenAIAPIKey:
		return s.LLM.OpenAIKey, true
	case OpenRouterAPIKey:
		return s.LLM.OpenRouterKey, true
	case GeminiAPIKey:
		return s.LLM.GeminiKey, true
	case RapidAPIKey:
		return s.Jobs.RapidAPIKey, true
	}
	return "", false
}

// Require returns ErrConfigurationMissing naming every credential in names
// that is not set.
func (s *Settings) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		val, known := s.credential(name)
		if !known || strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	return nil
}

// BackendCredentials returns the credential the configured reasoning backend
// needs, if any.
func (s *Settings) BackendCredentials() []string {
	switch s.LLM.Backend {
	case "", "openai":
		return []string{OpenAIAPIKey}
	case "openrouter":
		return []string{OpenRouterAPIKey}
	case "gemini":
		return []string{GeminiAPIKey}
	}
	return nil
}

// APIKey returns the key of the configured reasoning backend.
func (s *Settings) APIKey() string {
	switch s.LLM.Backend {
	case "openrouter":
		return s.LLM.OpenRouterKey
	case "gemini":
		return s.LLM.GeminiKey
	case "ollama":
		return ""
	}
	return s.LLM.OpenAIKey
}

// BaseURL returns the endpoint override of the configured reasoning backend.
func (s *Settings) BaseURL() string {
	switch s.LLM.Backend {
	case "ollama":
		return s.LLM.OllamaBaseURL
	case "", "openai":
		return s.LLM.OpenAIBaseURL
	}
	return ""
}
