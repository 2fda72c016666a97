// Command feedback is the interactive feedback MCP server and its
// terminal UI. `feedback serve` speaks MCP over stdio; `feedback ui` is
// the child process the server launches for each interaction.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/airsulG/interactive-feedback-magic/cmd/feedback/form"
	"github.com/airsulG/interactive-feedback-magic/internal/config"
	"github.com/airsulG/interactive-feedback-magic/internal/enhance"
	"github.com/airsulG/interactive-feedback-magic/internal/exchange"
	"github.com/airsulG/interactive-feedback-magic/internal/logging"
	"github.com/airsulG/interactive-feedback-magic/internal/server"
	"github.com/airsulG/interactive-feedback-magic/internal/store"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "feedback",
		Short:        "Human-in-the-loop feedback for AI coding agents",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.AddCommand(newServeCmd(), newUICmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.Logging.Path, cfg.Logging.Level); err != nil {
				return err
			}
			defer logging.Sync()

			var history *store.HistoryStore
			if cfg.History.Enabled {
				history, err = store.NewHistoryStore(cfg.History.Path)
				if err != nil {
					logging.L().Warn("history store unavailable, recording disabled", zap.Error(err))
				} else {
					defer history.Close()
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, history).Run(ctx)
		},
	}
}

func newUICmd() *cobra.Command {
	var (
		prompt        string
		rawOptions    string
		outputFile    string
		contextInfo   string
		disableImages bool
	)

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Run the interactive feedback form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.Logging.Path, cfg.Logging.Level); err != nil {
				return err
			}
			defer logging.Sync()

			capability, err := enhance.NewGeminiCapability(cmd.Context(), cfg.Enhancement.APIKey, cfg.Enhancement.Model)
			if err != nil {
				logging.L().Warn("enhancement capability unavailable", zap.Error(err))
			}

			imagesEnabled := cfg.Images.Enabled && !disableImages

			result, err := form.Run(form.Options{
				Prompt:            prompt,
				PredefinedOptions: exchange.SplitOptions(rawOptions),
				ContextInfo:       contextInfo,
				ImagesEnabled:     imagesEnabled,
				MaxImages:         cfg.Images.MaxCount,
				Capability:        capabilityOrNil(capability, err),
			})
			if err != nil {
				return err
			}

			if outputFile != "" {
				return exchange.WriteResultFile(outputFile, result)
			}

			// No output file: print the result for direct invocations.
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt text shown to the user")
	cmd.Flags().StringVar(&rawOptions, "predefined-options", "", "predefined options, |||-delimited")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "path to write the JSON result")
	cmd.Flags().StringVar(&contextInfo, "context-info", "", "project context passed to enhancement")
	cmd.Flags().BoolVar(&disableImages, "disable-image-upload", false, "disable image attachments for this run")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func capabilityOrNil(c *enhance.GeminiCapability, err error) enhance.RewriteCapability {
	if err != nil || c == nil {
		return enhance.Unavailable()
	}
	return c
}
