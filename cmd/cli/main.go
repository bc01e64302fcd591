package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sentiment-analyzer/internal/api"
	"sentiment-analyzer/internal/config"
	"sentiment-analyzer/internal/logger"
	"sentiment-analyzer/internal/ollama"
	"sentiment-analyzer/internal/sentiment"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	model      string
	jsonOutput bool
	port       int
)

var rootCmd = &cobra.Command{
	Use:   "sentiment-analyzer [text]",
	Short: "Classify text sentiment with a local Ollama model",
	Long: `Classifies text as Positive, Negative, or Neutral using a locally
hosted Ollama model. Text is taken from the argument or from stdin.

Examples:
  sentiment-analyzer "I love this product"
  echo "this is terrible" | sentiment-analyzer
  sentiment-analyzer --json "meh"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Ollama reachability and model availability",
	RunE:  runHealth,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sentiment-analyzer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SENTIMENT_CONFIG"), "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", "Override the configured model")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Override server port")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

// newService builds the classification stack from configuration.
func newService() (*config.Config, *sentiment.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if model != "" {
		cfg.Ollama.Model = model
	}

	client := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Timeout.Std(), cfg.Ollama.ProbeTimeout.Std())
	return cfg, sentiment.NewService(client, cfg.Ollama.Model), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to analyze")
	}

	cfg, svc, err := newService()
	if err != nil {
		return err
	}

	interactive := isatty.IsTerminal(os.Stderr.Fd())
	var sp *spinner.Spinner
	if interactive {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		sp.Suffix = fmt.Sprintf(" analyzing with %s...", cfg.Ollama.Model)
		sp.Start()
	}

	result, err := svc.Classify(context.Background(), text)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(os.Stdout, result)
	return nil
}

func printResult(w io.Writer, result *sentiment.Result) {
	label := sentimentColor(result.Sentiment).Sprint(string(result.Sentiment))
	fmt.Fprintf(w, "Sentiment: %s\n", label)

	if result.RawResponse != string(result.Sentiment) {
		dim := color.New(color.FgHiBlack)
		_, _ = dim.Fprintf(w, "Raw response: %s\n", result.RawResponse)
	}
}

func sentimentColor(s sentiment.Sentiment) *color.Color {
	switch s {
	case sentiment.Positive:
		return color.New(color.FgGreen, color.Bold)
	case sentiment.Negative:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, svc, err := newService()
	if err != nil {
		return err
	}

	status := svc.Probe(context.Background())

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Printf("API:    %s\n", statusWord(green, red, status.APIStatus == sentiment.StatusHealthy, status.APIStatus))
	fmt.Printf("Ollama: %s\n", statusWord(green, red, status.OllamaStatus == sentiment.StatusConnected, status.OllamaStatus))
	fmt.Printf("Model:  %s ", cfg.Ollama.Model)
	if status.ModelAvailable {
		_, _ = green.Println("available")
	} else {
		_, _ = red.Println("not available")
	}
	if status.Error != "" {
		dim := color.New(color.FgHiBlack)
		_, _ = dim.Printf("  %s\n", status.Error)
	}

	if status.OllamaStatus != sentiment.StatusConnected || !status.ModelAvailable {
		return fmt.Errorf("inference backend is not ready")
	}
	return nil
}

func statusWord(good, bad *color.Color, ok bool, word string) string {
	if ok {
		return good.Sprint(word)
	}
	return bad.Sprint(word)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, svc, err := newService()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	server := api.NewServer(api.Config{
		Service:        svc,
		Logger:         log,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Ollama.Timeout.Std() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on interrupt (Ctrl+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	go func() {
		<-quit
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	log.Info("starting server",
		zap.String("address", cfg.Server.Addr()),
		zap.String("model", cfg.Ollama.Model),
	)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
