// Command css-audit reports which selectors use each CSS custom property.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bennypowers.dev/cssaudit/internal/audit"
	"bennypowers.dev/cssaudit/internal/config"
	"bennypowers.dev/cssaudit/internal/log"
	"bennypowers.dev/cssaudit/internal/parser"
	"bennypowers.dev/cssaudit/internal/render"
	"bennypowers.dev/cssaudit/internal/sources"
	"bennypowers.dev/cssaudit/internal/version"
	"bennypowers.dev/cssaudit/internal/watch"
	"github.com/spf13/cobra"
)

const examples = `  css-audit styles.css
  css-audit --format=json src/**/*.css
  css-audit --format html --nesting deep src > audit.html`

// options holds the values of the command-line flags
type options struct {
	format         string
	configPath     string
	nesting        string
	ignorePrefixes []string
	logLevel       string
	watch          bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "css-audit [flags] <stylesheet|dir|glob>...",
		Short: "Report which selectors use each CSS custom property",
		Long: `css-audit reads stylesheets and lists every custom property referenced
through var(), with the selectors (and enclosing @media, @supports,
@container or @layer rules) that reference it.

Directories are searched for files matching the configured include
patterns. HTML files contribute their <style> elements and style
attributes; JavaScript and TypeScript files their css and html tagged
templates.`,
		Example:       examples,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := cmd.Flags()
	flags.StringVar(&opts.format, "format", "terminal", "Output format: terminal, json, html or none")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: .cssauditrc.* or the cssAudit key of package.json)")
	flags.StringVar(&opts.nesting, "nesting", "shallow", "How far to descend into grouping rules: shallow or deep")
	flags.StringArrayVar(&opts.ignorePrefixes, "ignore-prefix", nil, "Leave out custom properties with this prefix (repeatable)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&opts.watch, "watch", false, "Re-run the audit when an input changes")

	return cmd
}

// loadConfig merges the config file with the flags that were set explicitly
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, _, err := config.Load(wd, opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("nesting") {
		cfg.Nesting = opts.nesting
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("ignore-prefix") {
		cfg.IgnorePrefixes = append(cfg.IgnorePrefixes, opts.ignorePrefixes...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string, opts *options, stdout io.Writer) error {
	if len(args) == 0 {
		return audit.ErrNoStylesheets
	}

	// the flag applies before loading so config discovery is logged at that level
	if cmd.Flags().Changed("log-level") {
		if err := setLogLevel(opts.logLevel); err != nil {
			return err
		}
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := setLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	auditOpts, err := cfg.AuditOptions()
	if err != nil {
		return err
	}
	format := render.ParseFormat(cfg.Format)
	resolver := &sources.Resolver{Include: cfg.Include, Exclude: cfg.Exclude}

	once := func() ([]string, error) {
		paths, err := resolver.Resolve(args)
		if err != nil {
			return nil, err
		}
		index, err := audit.Run(paths, sources.Read, auditOpts)
		if err != nil {
			return nil, err
		}
		return paths, render.Render(stdout, format, index)
	}

	paths, err := once()
	if err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchAndRerun(cmd.Context(), paths, once)
}

func setLogLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// watchAndRerun re-runs the audit on changes until interrupted
func watchAndRerun(ctx context.Context, paths []string, once watch.RunFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.DefaultDebounce, once)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(paths); err != nil {
		return err
	}
	log.Info("watching %d file(s), press Ctrl+C to stop", len(paths))
	return w.Run(ctx)
}

// execute runs the command and returns the process exit status
func execute(args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)
	log.SetLevel(log.LevelInfo)

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		log.Error("%v", err)
		return 1
	}
	return 0
}

func main() {
	code := execute(os.Args[1:], os.Stdout, os.Stderr)
	parser.ClosePools()
	os.Exit(code)
}
