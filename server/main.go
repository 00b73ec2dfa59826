package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/api"
	"github.com/meikuraledutech/pipeline/config"
)

var (
	configPath     string
	strictRefs     bool
	ignoreDangling bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pipelined",
		Short:        "Analyze pipeline graphs over HTTP",
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})

	analyze := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a pipeline JSON file, or stdin when the file is - or omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runAnalyze(in, cmd.OutOrStdout(), analyzeOptions{
				strict:   strictRefs,
				analysis: pipeline.Options{IgnoreDangling: ignoreDangling},
			})
		},
	}
	analyze.Flags().BoolVar(&strictRefs, "strict", false, "reject duplicate node ids and dangling edges")
	analyze.Flags().BoolVar(&ignoreDangling, "ignore-dangling", false, "judge acyclicity by declared nodes only")
	root.AddCommand(analyze)

	return root
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger()
	app := api.New(cfg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	logger.Info("listening",
		"addr", cfg.Addr,
		"allowed_origin", cfg.AllowedOrigin,
		"strict_references", cfg.StrictRefs,
		"ignore_dangling", cfg.IgnoreDangling,
		"metrics", cfg.Metrics,
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type analyzeOptions struct {
	strict   bool
	analysis pipeline.Options
}

// runAnalyze decodes one pipeline from r and writes its Result to w.
// Validation failures are written to w as well, then returned.
func runAnalyze(r io.Reader, w io.Writer, opts analyzeOptions) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read pipeline: %w", err)
	}

	p, err := pipeline.Decode(body)
	if err == nil && opts.strict {
		err = p.CheckReferences()
	}
	if err != nil {
		var verrs pipeline.ValidationErrors
		if errors.As(err, &verrs) {
			_ = printJSON(w, map[string]any{"error": "validation failed", "details": verrs})
		}
		return err
	}

	return printJSON(w, p.AnalyzeWith(opts.analysis))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
