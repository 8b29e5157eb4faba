// Package config loads and validates the settings shared by every command.
//
// Values come from defaults, then an optional JSON file, then the
// environment, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tailor/internal/compiler"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/storage"
)

// Credential variables, in lookup order
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// Vertex AI variables, named as the genai SDK names them
const (
	EnvUseVertexAI    = "GOOGLE_GENAI_USE_VERTEXAI"
	EnvVertexProject  = "GOOGLE_CLOUD_PROJECT"
	EnvVertexLocation = "GOOGLE_CLOUD_LOCATION"
)

// DefaultMaxUploadBytes is the default bound on a server upload
const DefaultMaxUploadBytes int64 = 5 << 20

// Config represents settings that can be loaded from a JSON file and the environment.
type Config struct {
	APIKey string `json:"api_key,omitempty"`

	LLMProvider string `json:"llm_provider,omitempty" validate:"oneof=gemini genai"`
	LLMModel    string `json:"llm_model,omitempty"`

	UseVertexAI    bool   `json:"use_vertexai,omitempty"`
	VertexProject  string `json:"vertex_project,omitempty" validate:"required_if=UseVertexAI true"`
	VertexLocation string `json:"vertex_location,omitempty"`

	PdflatexPath string `json:"pdflatex_path,omitempty" validate:"required"`
	OutputPDF    string `json:"output_pdf,omitempty" validate:"required"`
	CompileLog   string `json:"compile_log,omitempty" validate:"required"`

	PublishURL        string `json:"publish_url,omitempty" validate:"omitempty,url"`
	S3Endpoint        string `json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3Region          string `json:"s3_region,omitempty"`
	S3AccessKeyID     string `json:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `json:"s3_secret_access_key,omitempty"`

	DatabaseURL string `json:"database_url,omitempty"`
	RabbitMQURL string `json:"rabbitmq_url,omitempty" validate:"omitempty,url"`

	Port           int    `json:"port,omitempty" validate:"min=1,max=65535"`
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty" validate:"min=1024"`
	RateLimit      bool   `json:"rate_limit,omitempty"`
	RateLimitAllow string `json:"rate_limit_allow,omitempty"`

	UseBrowser bool `json:"use_browser,omitempty"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		LLMProvider:    string(llm.ProviderGemini),
		PdflatexPath:   compiler.DefaultBinary,
		OutputPDF:      compiler.DefaultOutputPath,
		CompileLog:     compiler.DefaultLogPath,
		Port:           8080,
		MaxUploadBytes: DefaultMaxUploadBytes,
		RateLimit:      true,
	}
}

// Load builds the configuration from defaults, the JSON file at path (if
// non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = file.MergeWithDefaults(cfg)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bool fields cannot distinguish unset from false and are taken from defaults
// unless set true in c.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.LLMModel, defaults.LLMModel)
	fill(&result.VertexProject, defaults.VertexProject)
	fill(&result.VertexLocation, defaults.VertexLocation)
	fill(&result.PdflatexPath, defaults.PdflatexPath)
	fill(&result.OutputPDF, defaults.OutputPDF)
	fill(&result.CompileLog, defaults.CompileLog)
	fill(&result.PublishURL, defaults.PublishURL)
	fill(&result.S3Endpoint, defaults.S3Endpoint)
	fill(&result.S3Region, defaults.S3Region)
	fill(&result.S3AccessKeyID, defaults.S3AccessKeyID)
	fill(&result.S3SecretAccessKey, defaults.S3SecretAccessKey)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.RabbitMQURL, defaults.RabbitMQURL)
	fill(&result.RateLimitAllow, defaults.RateLimitAllow)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	result.RateLimit = result.RateLimit || defaults.RateLimit
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.UseVertexAI = result.UseVertexAI || defaults.UseVertexAI

	return result
}

// applyEnv overlays environment variables onto c.
func (c *Config) applyEnv() error {
	for _, key := range []string{EnvGeminiAPIKey, EnvGoogleAPIKey} {
		if v := os.Getenv(key); v != "" {
			c.APIKey = v
			break
		}
	}

	strs := map[string]*string{
		"LLM_PROVIDER":         &c.LLMProvider,
		"LLM_MODEL":            &c.LLMModel,
		"PDFLATEX_PATH":        &c.PdflatexPath,
		"OUTPUT_PDF":           &c.OutputPDF,
		"COMPILE_LOG":          &c.CompileLog,
		"PUBLISH_URL":          &c.PublishURL,
		"S3_ENDPOINT":          &c.S3Endpoint,
		"S3_REGION":            &c.S3Region,
		"S3_ACCESS_KEY_ID":     &c.S3AccessKeyID,
		"S3_SECRET_ACCESS_KEY": &c.S3SecretAccessKey,
		"DATABASE_URL":         &c.DatabaseURL,
		"RABBITMQ_URL":         &c.RabbitMQURL,
		"RATE_LIMIT_WHITELIST": &c.RateLimitAllow,
		EnvVertexProject:       &c.VertexProject,
		EnvVertexLocation:      &c.VertexLocation,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config error: invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.MaxUploadBytes = n
	}
	bools := map[string]*bool{
		"RATE_LIMIT_ENABLED": &c.RateLimit,
		"USE_BROWSER":        &c.UseBrowser,
		EnvUseVertexAI:       &c.UseVertexAI,
	}
	for key, dst := range bools {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: invalid %s %q: %w", key, v, err)
		}
		*dst = enabled
	}
	return nil
}

// Validate checks that the configuration has valid values. The credential is
// not checked here; commands that call the model use RequireCredential.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			fe := fields[0]
			return fmt.Errorf("config error: %s failed %q validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if c.UseVertexAI && c.LLMProvider != string(llm.ProviderGenAI) {
		return fmt.Errorf("config error: %s requires LLM_PROVIDER=%s", EnvUseVertexAI, llm.ProviderGenAI)
	}
	return nil
}

// RequireCredential returns the model API key or a MissingCredentialError.
// Vertex AI authenticates with application default credentials, so no key is
// required there.
func (c *Config) RequireCredential() (string, error) {
	if c.UseVertexAI {
		return strings.TrimSpace(c.APIKey), nil
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return "", &MissingCredentialError{Variable: EnvGeminiAPIKey}
	}
	return c.APIKey, nil
}

// LLMConfig returns the model configuration for the configured provider.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig().WithProvider(llm.Provider(c.LLMProvider))
	if c.LLMModel != "" {
		cfg = cfg.WithModel(llm.TierAdvanced, c.LLMModel)
	}
	if c.UseVertexAI {
		cfg = cfg.WithVertex(c.VertexProject, c.VertexLocation)
	}
	return cfg
}

// StorageOptions returns the credentials for S3-compatible publishing.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Region:          c.S3Region,
		Endpoint:        c.S3Endpoint,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
}

// RateLimitConfig returns the server rate limiter configuration.
func (c *Config) RateLimitConfig() *ratelimit.Config {
	rl := ratelimit.DefaultConfig()
	rl.Enabled = c.RateLimit
	rl.Whitelist = ratelimit.ParseIPList(c.RateLimitAllow)
	return rl
}
