// =============================================================================
// 📦 GraphFlow 配置加载器
// =============================================================================
// 统一配置加载，支持 .env / YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("GRAPHFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 是 GraphFlow 的完整配置结构
type Config struct {
	// Log 日志配置
	Log LogConfig `yaml:"log"`

	// LLM 聊天模型配置
	LLM LLMConfig `yaml:"llm"`

	// Metrics Prometheus 指标配置
	Metrics MetricsConfig `yaml:"metrics"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别: debug / info / warn / error
	Level string `yaml:"level"`
	// Format 输出格式: json / console
	Format string `yaml:"format"`
}

// LLMConfig 聊天模型配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// APIKey 一般不写入 YAML，由 OPENAI_API_KEY 注入
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Defaults 返回默认配置
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			Timeout:           60 * time.Second,
			RequestsPerMinute: 0,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "graphflow",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Loader 配置加载器
type Loader struct {
	configPath string
	envPrefix  string
	skipDotEnv bool
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{envPrefix: "GRAPHFLOW"}
}

// WithConfigPath 指定 YAML 配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 指定环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithoutDotEnv 跳过 .env 文件加载，测试用
func (l *Loader) WithoutDotEnv() *Loader {
	l.skipDotEnv = true
	return l
}

// Load 按 默认值 → YAML → 环境变量 的顺序加载配置
func (l *Loader) Load() (*Config, error) {
	if !l.skipDotEnv {
		// .env 不存在不算错误
		_ = godotenv.Load()
	}

	cfg := Defaults()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	l.applyEnv(cfg)

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	setString(l.env("LOG_LEVEL"), &cfg.Log.Level)
	setString(l.env("LOG_FORMAT"), &cfg.Log.Format)

	setString(l.env("LLM_BASE_URL"), &cfg.LLM.BaseURL)
	setString(l.env("LLM_MODEL"), &cfg.LLM.Model)
	setString(l.env("LLM_API_KEY"), &cfg.LLM.APIKey)
	setDuration(l.env("LLM_TIMEOUT"), &cfg.LLM.Timeout)
	setInt(l.env("LLM_REQUESTS_PER_MINUTE"), &cfg.LLM.RequestsPerMinute)

	setBool(l.env("METRICS_ENABLED"), &cfg.Metrics.Enabled)
	setString(l.env("METRICS_ADDR"), &cfg.Metrics.Addr)

	setBool(l.env("TELEMETRY_ENABLED"), &cfg.Telemetry.Enabled)
	setString(l.env("TELEMETRY_SERVICE_NAME"), &cfg.Telemetry.ServiceName)
	setString(l.env("TELEMETRY_OTLP_ENDPOINT"), &cfg.Telemetry.OTLPEndpoint)
	setFloat(l.env("TELEMETRY_SAMPLE_RATE"), &cfg.Telemetry.SampleRate)
}

func (l *Loader) env(key string) string {
	return os.Getenv(l.envPrefix + "_" + key)
}

func setString(v string, dst *string) {
	if v != "" {
		*dst = v
	}
}

func setInt(v string, dst *int) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(v string, dst *bool) {
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

func setFloat(v string, dst *float64) {
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func setDuration(v string, dst *time.Duration) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
