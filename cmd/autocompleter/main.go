package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	autocompleter "github.com/goliatone/go-autocompleter"
	"github.com/goliatone/go-autocompleter/pkg/openapi"
	"github.com/goliatone/go-autocompleter/pkg/renderers/tui"
)

type globalFlags struct {
	config    string
	openapi   string
	operation string
	templates string
	theme     string
	logLevel  string
}

func main() {
	flag.Usage = usage
	var g globalFlags
	flag.StringVar(&g.config, "config", "forms", "directory of JSON/YAML field definitions")
	flag.StringVar(&g.openapi, "openapi", "", "OpenAPI document declaring x-autocompleter fields (replaces -config)")
	flag.StringVar(&g.operation, "operation", "", "operation ID to take fields from when -openapi is set")
	flag.StringVar(&g.templates, "templates", "", "directory overlaying the HTML templates")
	flag.StringVar(&g.theme, "theme", "", "theme name exposed to templates")
	flag.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	logger, err := newLogger(g.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, g, args[0], args[1:]); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] <command> [args]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  list                     list configured fields\n")
	fmt.Fprintf(out, "  render <field> [value]   print the HTML markup of a field\n")
	fmt.Fprintf(out, "  decode <field> <value>   map a submitted payload to its value\n")
	fmt.Fprintf(out, "  prompt <field>           pick a value interactively\n")
	fmt.Fprintf(out, "  serve                    serve lookup endpoints and the runtime script\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, logger *zap.Logger, g globalFlags, command string, args []string) error {
	rt, err := openRuntime(ctx, logger, g)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("close runtime", zap.Error(err))
		}
	}()

	switch command {
	case "list":
		return runList(rt)
	case "render":
		return runRender(ctx, rt, args)
	case "decode":
		return runDecode(ctx, rt, args)
	case "prompt":
		return runPrompt(ctx, logger, rt, args)
	case "serve":
		return runServe(ctx, logger, rt, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func openRuntime(ctx context.Context, logger *zap.Logger, g globalFlags) (*autocompleter.Runtime, error) {
	opts := []autocompleter.RuntimeOption{
		autocompleter.WithLogger(logger),
		autocompleter.WithTemplatesDir(g.templates),
	}
	if name := strings.TrimSpace(g.theme); name != "" {
		opts = append(opts, autocompleter.WithTheme(&theme.RendererConfig{Theme: name}))
	}

	if path := strings.TrimSpace(g.openapi); path != "" {
		doc, err := openapi.Load(ctx, nil, openapi.SourceFromFile(path))
		if err != nil {
			return nil, err
		}
		return autocompleter.RuntimeFromOpenAPI(ctx, doc, g.operation, opts...)
	}
	return autocompleter.LoadRuntime(ctx, g.config, opts...)
}

func runList(rt *autocompleter.Runtime) error {
	for _, name := range rt.Names() {
		f, err := rt.Field(name)
		if err != nil {
			return err
		}
		kind := string(f.Attributes.Widget)
		if f.Remote() {
			kind += " -> " + f.Attributes.RouteName
		}
		fmt.Printf("%s\t%s\tmultiple=%t\n", name, kind, f.Attributes.Multiple)
	}
	return nil
}

func runRender(ctx context.Context, rt *autocompleter.Runtime, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("field name is required")
	}
	var submitted any
	if fs.NArg() > 1 {
		submitted = fs.Arg(1)
	}

	out, err := rt.Render(ctx, fs.Arg(0), submitted)
	if err != nil {
		return err
	}
	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Field written to %s\n", *output)
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func runDecode(ctx context.Context, rt *autocompleter.Runtime, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: decode <field> <value>")
	}
	f, err := rt.Field(args[0])
	if err != nil {
		return err
	}
	value, err := f.Submit(ctx, args[1])
	if err != nil {
		return err
	}
	view := f.View(ctx, args[1])
	fmt.Printf("value: %v\ndisplay: %q\n", value, view.Value)
	return nil
}

func runPrompt(ctx context.Context, logger *zap.Logger, rt *autocompleter.Runtime, args []string) error {
	fs := flag.NewFlagSet("prompt", flag.ContinueOnError)
	current := fs.String("current", "", "previously submitted payload to preselect")
	pageSize := fs.Int("page-size", 10, "options shown per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("field name is required")
	}
	f, err := rt.Field(fs.Arg(0))
	if err != nil {
		return err
	}

	prompter := tui.New(tui.WithLogger(logger), tui.WithPageSize(*pageSize))
	res, err := prompter.Prompt(ctx, f, *current)
	if err != nil {
		return err
	}
	fmt.Printf("submitted: %s\nvalue: %v\ndisplay: %q\n", res.Wire, res.Value, res.View.Value)
	return nil
}

func runServe(ctx context.Context, logger *zap.Logger, rt *autocompleter.Runtime, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	base := fs.String("base", "", "base path for every route")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mux := http.NewServeMux()
	pattern, err := rt.RegisterRoutes(mux, *base)
	if err != nil {
		return err
	}
	assets := strings.TrimRight(*base, "/") + "/assets/"
	mux.Handle(assets, http.StripPrefix(assets, http.FileServerFS(rt.AssetsFS())))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving lookups",
			zap.String("addr", *addr),
			zap.String("lookup", pattern),
			zap.String("assets", assets),
			zap.Strings("routes", rt.Lookup().Routes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}
