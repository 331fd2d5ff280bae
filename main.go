// Command selectionkit loads an HTML document, runs a selection script
// against it and prints the rendered lines with the selection marked.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/selectionkit/config"
	"github.com/chrisuehlinger/selectionkit/editing"
	"github.com/chrisuehlinger/selectionkit/js"
	"github.com/chrisuehlinger/selectionkit/layout"
	"github.com/chrisuehlinger/selectionkit/logger"
	"github.com/chrisuehlinger/selectionkit/network"
	"github.com/chrisuehlinger/selectionkit/render"
)

type options struct {
	configPath string
	scriptPath string
	eval       string
	wait       time.Duration
	debug      bool
	logPath    string
	printText  bool
	offline    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("selectionkit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.scriptPath, "script", "", "Path to a script run after the document loads")
	fs.StringVar(&opts.eval, "e", "", "Script source to run after -script")
	fs.DurationVar(&opts.wait, "wait", 0, "Keep the event loop running this long for timers")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&opts.logPath, "log", "", "Write logs to this file instead of stderr")
	fs.BoolVar(&opts.printText, "text", false, "Also print the selected text")
	fs.BoolVar(&opts.offline, "offline", false, "Refuse to fetch http and https URLs")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: selectionkit [options] <file.html|url>\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExample:\n  selectionkit -e \"getSelection().selectAllChildren(document.body)\" page.html\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logOpts := logger.Options{Debug: cfg.Log.Debug || opts.debug, Path: cfg.Log.Path, Writer: stderr}
	if opts.logPath != "" {
		logOpts.Path = opts.logPath
	}
	log, closeLog, err := logger.New(logOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := renderFile(ctx, fs.Arg(0), cfg, opts, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, out.view)
	if opts.printText {
		fmt.Fprintf(stdout, "selected: %q\n", out.text)
	}
	if out.scriptErrors > 0 {
		return 1
	}
	return 0
}

type result struct {
	view         string
	text         string
	scriptErrors int
}

// renderFile loads the document at ref, runs its scripts and the
// configured ones, and paints the committed selection.
func renderFile(ctx context.Context, ref string, cfg config.Config, opts options, log *zap.Logger) (result, error) {
	loaderOpts := []network.LoaderOption{network.WithLogger(log)}
	if !opts.offline {
		client, err := network.NewClient()
		if err != nil {
			return result{}, err
		}
		loaderOpts = append(loaderOpts, network.WithClient(client))
	}
	loader := network.NewLoader(loaderOpts...)
	doc, base, err := loader.LoadDocument(ctx, ref)
	if err != nil {
		return result{}, err
	}

	l := layout.New(doc, cfg.LayoutOptions())
	rt := js.NewRuntime(js.WithLogger(log))
	rt.SetOnError(func(err error) {
		log.Warn("script error", zap.Error(err))
	})
	state := editing.NewSelectionState(doc, l, rt,
		editing.WithBehavior(cfg.Behavior()),
		editing.WithLogger(log),
		editing.WithScheduler(rt.Scheduler()))
	rt.Attach(state)
	defer rt.Detach()

	for _, script := range loader.Scripts(ctx, doc, base) {
		_ = rt.ExecuteScript(script.Source, script.Name)
	}
	if opts.scriptPath != "" {
		code, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return result{}, fmt.Errorf("read script: %w", err)
		}
		_ = rt.ExecuteScript(string(code), opts.scriptPath)
	}
	if opts.eval != "" {
		_ = rt.ExecuteScript(opts.eval, "<eval>")
	}

	rt.Drain()
	if opts.wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, opts.wait)
		err := rt.Run(waitCtx)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return result{}, err
		}
	}

	l.Update()
	view := layout.NewView(l)
	state.Pending().Commit(view)
	log.Debug("rendered",
		zap.Int("lines", len(view.Lines())),
		zap.Stringer("selection", state.ComputeVisibleSelectionInDOMTree().Type()))

	return result{
		view:         render.Text(view),
		text:         state.SelectedText(editing.DefaultTextBehavior),
		scriptErrors: len(rt.Errors()),
	}, nil
}
