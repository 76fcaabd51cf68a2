package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Vision    VisionConfig
	Browser   BrowserConfig
	Providers ProvidersConfig
	OCR       OCRConfig
	LogLevel  slog.Level
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	GRPCHealthAddr string // empty disables the gRPC health endpoint
}

// VisionConfig holds configuration for the remote OCR/vision service.
type VisionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
}

// BrowserConfig holds headless browser configuration.
type BrowserConfig struct {
	ExecPath     string
	Headless     bool
	NavTimeout   time.Duration
	ReadyTimeout time.Duration
}

// ProvidersConfig holds the receipt endpoints of each provider.
type ProvidersConfig struct {
	TelebirrBaseURL string `yaml:"telebirr_base_url"`
	BOABaseURL      string `yaml:"boa_base_url"`
	CBEBaseURL      string `yaml:"cbe_base_url"`
	CBEInsecureTLS  bool   `yaml:"cbe_insecure_tls"`
	PDFFetchTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm      string
	DPI           int
	MaxPages      int
	HeicConverter string
}

// LoadConfig loads configuration from a .env file (if any), an optional YAML overlay
// named by VERIFIER_CONFIG, and environment variables. Environment wins.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file; using process environment", "error", err)
	}

	overlay := ProvidersConfig{
		TelebirrBaseURL: "https://transactioninfo.ethiotelecom.et/receipt/",
		BOABaseURL:      "https://cs.bankofabyssinia.com/slip/",
		CBEBaseURL:      "https://apps.cbe.com.et:100/",
		CBEInsecureTLS:  true,
	}
	if path := os.Getenv("VERIFIER_CONFIG"); path != "" {
		if err := loadYAMLOverlay(path, &overlay); err != nil {
			return nil, WrapError(err, "load provider overlay")
		}
	}

	return &Config{
		Server: ServerConfig{
			HTTPAddr:       normalizeAddr(getEnv("HTTP_ADDR", getEnv("PORT", ":8000"))),
			GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", ""),
		},
		Vision: VisionConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("VISION_TIMEOUT", 90*time.Second),
			MaxRetries:  getEnvAsInt("VISION_MAX_RETRIES", 3),
			BackoffBase: getEnvAsDuration("VISION_BACKOFF_BASE", time.Second),
		},
		Browser: BrowserConfig{
			ExecPath:     getEnv("CHROME_PATH", ""),
			Headless:     getEnvAsBool("BROWSER_HEADLESS", true),
			NavTimeout:   getEnvAsDuration("BROWSER_NAV_TIMEOUT", 60*time.Second),
			ReadyTimeout: getEnvAsDuration("BROWSER_READY_TIMEOUT", 30*time.Second),
		},
		Providers: ProvidersConfig{
			TelebirrBaseURL: getEnv("TELEBIRR_BASE_URL", overlay.TelebirrBaseURL),
			BOABaseURL:      getEnv("BOA_BASE_URL", overlay.BOABaseURL),
			CBEBaseURL:      getEnv("CBE_BASE_URL", overlay.CBEBaseURL),
			CBEInsecureTLS:  getEnvAsBool("CBE_INSECURE_TLS", overlay.CBEInsecureTLS),
			PDFFetchTimeout: getEnvAsDuration("PDF_FETCH_TIMEOUT", 120*time.Second),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			DPI:           getEnvAsInt("PDF_RASTER_DPI", 144),
			MaxPages:      getEnvAsInt("MAX_PDF_PAGES", 0),
			HeicConverter: getEnv("HEIC_CONVERTER", "magick"),
		},
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func loadYAMLOverlay(path string, into *ProvidersConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc struct {
		Providers ProvidersConfig `yaml:"providers"`
	}
	doc.Providers = *into
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	*into = doc.Providers
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func normalizeAddr(addr string) string {
	if addr != "" && !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Browser.NavTimeout <= 0 || c.Browser.ReadyTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "browser timeouts must be positive", ErrInvalidInput)
	}
	if c.Providers.PDFFetchTimeout <= 0 || c.Vision.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "fetch timeouts must be positive", ErrInvalidInput)
	}
	if c.Providers.TelebirrBaseURL == "" || c.Providers.BOABaseURL == "" || c.Providers.CBEBaseURL == "" {
		return NewAppError("CONFIG_ERROR", "provider base URLs are required", ErrInvalidInput)
	}
	if c.Vision.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set; image discovery and PDF OCR will return empty results")
	}
	return nil
}
