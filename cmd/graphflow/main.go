// =============================================================================
// GraphFlow 主入口
// =============================================================================
// 示例运行器入口点，包含示例图执行、交互式对话、Mermaid 导出
//
// 使用方法:
//
//	graphflow run                          # 运行全部示例
//	graphflow run --example basic          # 只运行基础流水线
//	graphflow run --example conditional    # 只运行条件路由示例
//	graphflow run --example llm            # 只运行 LLM 对话示例
//	graphflow chat                         # 交互式对话
//	graphflow export --out diagrams        # 导出 Mermaid 图
//	graphflow version                      # 显示版本信息
// =============================================================================

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/graphflow/agent"
	"github.com/BaSui01/graphflow/config"
	"github.com/BaSui01/graphflow/internal/metrics"
	"github.com/BaSui01/graphflow/internal/telemetry"
	"github.com/BaSui01/graphflow/llm"
	"github.com/BaSui01/graphflow/viz"
	"github.com/BaSui01/graphflow/workflow"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runExamples(os.Args[2:])
	case "chat":
		runChat(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🚀 run 命令
// =============================================================================

func runExamples(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	example := fs.String("example", "all", "Example to run: basic, conditional, llm, all")
	fs.Parse(args)

	env := bootstrap(*configPath)
	defer env.close()

	ctx := context.Background()

	if *example == "basic" || *example == "all" {
		runBasicExample(ctx, env)
	}
	if *example == "conditional" || *example == "all" {
		runConditionalExample(ctx, env)
	}
	if *example == "llm" || *example == "all" {
		runLLMExample(ctx, env)
	}
}

func runBasicExample(ctx context.Context, env *environment) {
	fmt.Println("=== Basic pipeline ===")

	final, err := agent.RunBasic(ctx, "Alice", "What is a workflow graph?", env.graphOptions()...)
	if err != nil {
		env.logger.Fatal("basic example failed", zap.Error(err))
	}

	for _, m := range final.GetSlice(agent.FieldMessages) {
		fmt.Printf("  %v\n", m)
	}
	fmt.Printf("  steps: %d\n\n", final.GetInt(agent.FieldStepCount))
}

func runConditionalExample(ctx context.Context, env *environment) {
	fmt.Println("=== Conditional routing ===")

	inputs := []string{
		"Hello there!",
		"What time is it?",
		"Please run the report",
		"zzzzz",
	}
	for _, msg := range inputs {
		final, err := agent.RunConditional(ctx, msg, env.graphOptions()...)
		if err != nil {
			env.logger.Fatal("conditional example failed", zap.Error(err))
		}
		fmt.Printf("  %-28q -> [%s] %s\n",
			msg,
			final.GetString(agent.FieldMessageType),
			final.GetString(agent.FieldResponse),
		)
	}
	fmt.Println()
}

func runLLMExample(ctx context.Context, env *environment) {
	fmt.Println("=== LLM chat ===")

	client, err := newLLMClient(env)
	if err != nil {
		env.logger.Warn("skipping llm example", zap.Error(err))
		fmt.Println("  skipped: no API key configured")
		fmt.Println()
		return
	}

	g, err := agent.NewChatGraph(client, env.graphOptions()...)
	if err != nil {
		env.logger.Fatal("build chat graph failed", zap.Error(err))
	}

	final, err := agent.RunChat(ctx, g, env.cfg.LLM.Model, nil, "Say hello in one short sentence.")
	if err != nil {
		env.logger.Fatal("llm example failed", zap.Error(err))
	}

	for _, m := range agent.History(final) {
		fmt.Printf("  [%s] %s\n", m.Role, m.Content)
	}
	fmt.Println()
}

// =============================================================================
// 💬 chat 命令
// =============================================================================

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	env := bootstrap(*configPath)
	defer env.close()

	client, err := newLLMClient(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "LLM client unavailable: %v\n", err)
		os.Exit(1)
	}

	g, err := agent.NewChatGraph(client, env.graphOptions()...)
	if err != nil {
		env.logger.Fatal("build chat graph failed", zap.Error(err))
	}

	fmt.Println("GraphFlow chat. Type 'quit' or 'exit' to leave.")

	ctx := context.Background()
	var history []llm.Message
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		final, err := agent.RunChat(ctx, g, env.cfg.LLM.Model, history, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		history = agent.History(final)
		if len(history) > 0 {
			fmt.Printf("bot> %s\n", history[len(history)-1].Content)
		}
	}

	fmt.Println("Bye.")
}

// =============================================================================
// 🗺️ export 命令
// =============================================================================

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "diagrams", "Output directory for Mermaid files")
	fs.Parse(args)

	logger := zap.NewNop()

	basic, err := agent.NewBasicGraph(workflow.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build basic graph: %v\n", err)
		os.Exit(1)
	}
	conditional, err := agent.NewConditionalGraph(workflow.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build conditional graph: %v\n", err)
		os.Exit(1)
	}

	graphs := map[string]*workflow.CompiledGraph{
		"basic.md":       basic,
		"conditional.md": conditional,
	}
	for name, g := range graphs {
		path := filepath.Join(*out, name)
		if err := viz.SaveMermaid(g, path); err != nil {
			fmt.Fprintf(os.Stderr, "export %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
	}
}

// =============================================================================
// 🔧 启动辅助
// =============================================================================

// environment 聚合 CLI 各子命令共享的运行时依赖
type environment struct {
	cfg       *config.Config
	logger    *zap.Logger
	collector *metrics.Collector
	providers *telemetry.Providers
}

func bootstrap(configPath string) *environment {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)

	logger.Info("Starting GraphFlow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	env := &environment{cfg: cfg, logger: logger, providers: providers}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		env.collector = metrics.NewCollector("graphflow", reg, logger)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	return env
}

func (e *environment) graphOptions() []workflow.GraphOption {
	opts := []workflow.GraphOption{workflow.WithLogger(e.logger)}
	if e.collector != nil {
		opts = append(opts, workflow.WithMetrics(e.collector))
	}
	return opts
}

func (e *environment) close() {
	if e.providers != nil {
		if err := e.providers.Shutdown(context.Background()); err != nil {
			e.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

func newLLMClient(env *environment) (*llm.Client, error) {
	var opts []llm.Option
	if env.collector != nil {
		opts = append(opts, llm.WithMetrics(env.collector))
	}
	return llm.NewClient(llm.Config{
		BaseURL:           env.cfg.LLM.BaseURL,
		APIKey:            env.cfg.LLM.APIKey,
		Model:             env.cfg.LLM.Model,
		Timeout:           env.cfg.LLM.Timeout,
		RequestsPerMinute: env.cfg.LLM.RequestsPerMinute,
	}, env.logger, opts...)
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("GraphFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`GraphFlow - Workflow Graph Engine

Usage:
  graphflow <command> [options]

Commands:
  run       Run the example graphs
  chat      Interactive chat backed by the LLM graph
  export    Export example graphs as Mermaid diagrams
  version   Show version information
  help      Show this help message

Options for 'run':
  --config <path>     Path to configuration file (YAML)
  --example <name>    basic, conditional, llm or all (default all)

Options for 'export':
  --out <dir>         Output directory (default diagrams)

Examples:
  graphflow run
  graphflow run --example conditional
  graphflow chat --config config.yaml
  graphflow export --out docs/diagrams
  graphflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
