package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/yomitoru/yomitoru/internal/config"
	"github.com/yomitoru/yomitoru/internal/ocr"
	"github.com/yomitoru/yomitoru/internal/pipeline"
	"github.com/yomitoru/yomitoru/internal/server"
	"github.com/yomitoru/yomitoru/internal/translator"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the translation API",
	Long: `Start an HTTP server that provides REST API endpoints for image
translation.

The server provides the following endpoints:
  POST /api/translate  - Translate an uploaded image
  GET  /ws/translate   - WebSocket translation with progress updates
  GET  /health         - Health check endpoint
  GET  /metrics        - Prometheus metrics

Examples:
  yomitoru serve
  yomitoru serve --port 8080
  yomitoru serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		if cmd.Flags().Changed("cors-origin") {
			cfg.Server.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		if cmd.Flags().Changed("max-upload-size") {
			size, _ := cmd.Flags().GetInt("max-upload-size")
			cfg.Server.MaxUploadMB = int64(size)
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Server.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
		}
		if cmd.Flags().Changed("shutdown-timeout") {
			cfg.Server.ShutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}
		if cmd.Flags().Changed("cooldown") {
			cfg.Server.CooldownSec, _ = cmd.Flags().GetInt("cooldown")
		}

		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pl, cleanup, err := buildPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		apiServer := server.NewServer(cfg, pl)
		defer apiServer.Close()

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           apiServer.SetupRoutes(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
		}

		go func() {
			slog.Info("Starting translation server", "host", host, "port", port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		slog.Info("Shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server shutdown completed")
		}

		return nil
	},
}

// buildPipeline constructs the translation pipeline from credentials in
// the environment. The returned cleanup closes the API clients.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	credentials, err := config.GoogleCredentials()
	if err != nil {
		return nil, nil, err
	}
	openAIKey, err := config.OpenAIKey()
	if err != nil {
		return nil, nil, err
	}

	target, err := language.Parse(cfg.Translate.TargetLanguage)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid target language %q: %w", cfg.Translate.TargetLanguage, err)
	}

	visionClient, err := ocr.NewVisionClient(ctx, credentials)
	if err != nil {
		return nil, nil, err
	}

	googleTranslator, err := translator.NewGoogleTranslator(ctx, credentials, target)
	if err != nil {
		_ = visionClient.Close()
		return nil, nil, err
	}

	openAITranslator := translator.NewOpenAITranslator(translator.OpenAIConfig{
		APIKey:      openAIKey,
		Model:       cfg.Translate.Model,
		Temperature: cfg.Translate.Temperature,
		MaxTokens:   cfg.Translate.MaxTokens,
	})

	cleanup := func() {
		if err := googleTranslator.Close(); err != nil {
			slog.Error("closing translate client", "error", err)
		}
		if err := visionClient.Close(); err != nil {
			slog.Error("closing vision client", "error", err)
		}
	}

	return pipeline.New(visionClient, googleTranslator, openAITranslator), cleanup, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 10, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 60, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Int("cooldown", 60, "per-client cooldown between uploads in seconds")
}
