package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"callroot/internal/callhierarchy"
	cerrors "callroot/internal/errors"
	"callroot/internal/mapping"
	"callroot/internal/metrics"
	"callroot/internal/paths"
	"callroot/internal/present"
	"callroot/internal/semantic"
	"callroot/internal/telemetry"
	"callroot/internal/version"
)

var (
	callsOffset    int
	callsLine      int
	callsColumn    int
	callsDirection string
	callsDepth     int
	callsFormat    string
	callsTimeout   time.Duration
	callsTrace     string
	callsStdin     bool
)

var callsCmd = &cobra.Command{
	Use:   "calls <file>",
	Short: "Show the call hierarchy rooted at the symbol under a position",
	Long: `Resolve the symbol at a position in <file> and print its call hierarchy.

The position is either a byte offset (--offset) or a 1-based line and column
(--line, --column; the column counts bytes). A symbol found in a metadata
project is redirected to its source definition before the root is built.

Examples:
  callroot calls internal/server/server.go --line 42 --column 7
  callroot calls main.go --offset 1180 --direction callees --depth 3
  callroot calls main.go --line 10 --column 2 --format json
  cat main.go | callroot calls main.go --stdin --line 10 --column 2`,
	Args: cobra.ExactArgs(1),
	RunE: runCalls,
}

func init() {
	callsCmd.Flags().IntVar(&callsOffset, "offset", -1, "Byte offset of the caret")
	callsCmd.Flags().IntVar(&callsLine, "line", 0, "1-based line of the caret")
	callsCmd.Flags().IntVar(&callsColumn, "column", 0, "1-based byte column of the caret")
	callsCmd.Flags().StringVar(&callsDirection, "direction", "", "Expansion direction: callers or callees (default from config)")
	callsCmd.Flags().IntVar(&callsDepth, "depth", -1, "Levels to expand below the root (default from config)")
	callsCmd.Flags().StringVar(&callsFormat, "format", string(present.FormatTree), "Output format: tree, json, yaml or none")
	callsCmd.Flags().DurationVar(&callsTimeout, "timeout", 0, "Abort after this long (default from config)")
	callsCmd.Flags().StringVar(&callsTrace, "trace", "", "Span exporter: none or stdout (default from config)")
	callsCmd.Flags().BoolVar(&callsStdin, "stdin", false, "Read the current document text from stdin")
	rootCmd.AddCommand(callsCmd)
}

// position is the caret as given on the command line
type position struct {
	offset int
	line   int
	column int
}

// validate checks that exactly one addressing mode is used
func (p position) validate() error {
	hasOffset := p.offset >= 0
	hasLine := p.line != 0 || p.column != 0
	switch {
	case hasOffset && hasLine:
		return fmt.Errorf("use either --offset or --line/--column, not both")
	case !hasOffset && !hasLine:
		return fmt.Errorf("a position is required: --offset or --line and --column")
	case hasLine && (p.line < 1 || p.column < 1):
		return fmt.Errorf("--line and --column are 1-based and both required")
	}
	return nil
}

// resolve converts the position to a byte offset in content
func (p position) resolve(content []byte) (int, error) {
	if p.offset >= 0 {
		return p.offset, nil
	}
	return lineColumnToOffset(content, p.line, p.column)
}

// lineColumnToOffset converts a 1-based line and byte column to a byte offset.
// A column one past the last character addresses the end of the line.
func lineColumnToOffset(content []byte, line, column int) (int, error) {
	start := 0
	for l := 1; l < line; l++ {
		i := indexByteFrom(content, '\n', start)
		if i < 0 {
			return 0, cerrors.Newf(cerrors.InvalidPosition, "line %d is past the end of the document", line)
		}
		start = i + 1
	}
	end := indexByteFrom(content, '\n', start)
	if end < 0 {
		end = len(content)
	}
	offset := start + column - 1
	if offset > end {
		return 0, cerrors.Newf(cerrors.InvalidPosition, "column %d is past the end of line %d", column, line)
	}
	return offset, nil
}

func indexByteFrom(b []byte, c byte, from int) int {
	i := bytes.IndexByte(b[from:], c)
	if i < 0 {
		return -1
	}
	return from + i
}

// readDocument returns the document text: stdin when requested, otherwise the file
func readDocument(path string, stdin io.Reader, useStdin bool) ([]byte, error) {
	if useStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.New(cerrors.DocumentNotFound, fmt.Sprintf("cannot read %s", path), err)
	}
	return data, nil
}

// logProgress reports pipeline progress through the logger
type logProgress struct {
	logger *slog.Logger
}

func (p logProgress) Describe(description string) {
	p.logger.Info(description)
}

func (p logProgress) AllowCancellation(allow bool) {
	p.logger.Debug("Cancellation available", "allowed", allow)
}

func runCalls(cmd *cobra.Command, args []string) error {
	pos := position{offset: callsOffset, line: callsLine, column: callsColumn}
	if err := pos.validate(); err != nil {
		return err
	}
	format, err := present.ParseFormat(callsFormat)
	if err != nil {
		return err
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	cfg := e.cfg

	direction := callhierarchy.Direction(cfg.Expansion.Direction)
	if callsDirection != "" {
		if direction, err = callhierarchy.ParseDirection(callsDirection); err != nil {
			return err
		}
	}
	depth := cfg.Expansion.MaxDepth
	if callsDepth >= 0 {
		depth = callsDepth
	}
	timeout := time.Duration(cfg.Pipeline.TimeoutMs) * time.Millisecond
	if callsTimeout > 0 {
		timeout = callsTimeout
	}
	traces := cfg.Telemetry.Traces
	if callsTrace != "" {
		traces = callsTrace
	}

	docPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	content, err := readDocument(docPath, cmd.InOrStdin(), callsStdin)
	if err != nil {
		return err
	}
	offset, err := pos.resolve(content)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tp, shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "callroot",
		ServiceVersion: version.Version,
		TraceExporter:  traces,
		Writer:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		// ctx may already be done; flushing gets its own deadline.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			e.logger.Warn("Failed to flush traces", "error", err.Error())
		}
	}()

	ws, err := e.openWorkspace()
	if err != nil {
		return err
	}
	redirects, err := e.openRedirects()
	if err != nil {
		return err
	}

	presenterCfg, presenter, err := present.Config(ctx, cmd.OutOrStdout(), format, present.Options{
		Direction: direction,
		MaxDepth:  depth,
		Logger:    e.logger,
	})
	if err != nil {
		return err
	}

	provider := semantic.NewProvider(ws, semantic.ProviderOptions{
		PositionEncoding: cfg.Index.PositionEncoding,
		Logger:           e.logger,
	})
	factory := semantic.NewFactory(ws, semantic.FactoryOptions{
		MaxNodes: cfg.Expansion.MaxNodes,
		Logger:   e.logger,
	})
	recorder := metrics.NewRecorder()

	orch, err := callhierarchy.NewOrchestrator(callhierarchy.Config{
		Provider:       provider,
		Mapper:         mapping.NewService(ws, redirects, e.logger),
		Factory:        factory,
		Presenter:      presenterCfg,
		Notifier:       present.NewConsoleNotifier(cmd.ErrOrStderr(), e.logger),
		Logger:         e.logger,
		Metrics:        recorder,
		TracerProvider: tp,
	})
	if err != nil {
		return err
	}

	out, err := orch.Resolve(ctx, callhierarchy.Request{
		Document: callhierarchy.DocumentRef{Path: docPath, Content: content},
		Offset:   offset,
		Progress: logProgress{logger: e.logger},
	})

	if textfile := paths.ResolveAgainst(e.root, cfg.Metrics.Textfile); textfile != "" {
		if werr := recorder.WriteTextfile(textfile); werr != nil {
			e.logger.Warn("Failed to write metrics textfile", "path", textfile, "error", werr.Error())
		}
	}
	if err != nil {
		return err
	}

	e.logger.Debug("Call hierarchy resolved",
		"invocation", out.Invocation,
		"state", out.State.String(),
		"reason", string(out.Reason),
		"symbol", string(out.Symbol),
		"project", string(out.Project),
		"redirected", out.Redirected,
	)
	if presenter != nil {
		return presenter.Err()
	}
	return nil
}
