package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/config"
	"github.com/umair4234/Thumbgenai/internal/masker"
	"github.com/umair4234/Thumbgenai/internal/notify"
	"github.com/umair4234/Thumbgenai/internal/render"
	"github.com/umair4234/Thumbgenai/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	ctx          context.Context
	log          pslog.Logger
	notifier     *notify.Notifier
	config       *config.Config
	exportAlerts bool
	submitAlerts bool
	copyAlerts   bool
	brushSize    float64
	themeName    string
	activeTheme  *theme.Theme
	stdout       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot(ctx context.Context) *root {
	logger := pslog.Ctx(ctx)
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		logger.Warn("failed to load config", "err", err)
		cfg = config.New()
	}
	n := notify.New(notify.LoadPreferences())
	n.SetLogger(logger)

	r := &root{
		fs:       flag.NewFlagSet("thumbmask", flag.ContinueOnError),
		program:  "thumbmask",
		ctx:      ctx,
		log:      logger,
		notifier: n,
		config:   cfg,
		stdout:   os.Stdout,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting a mask")
	r.fs.BoolVar(&r.submitAlerts, "notify-submit", cfg.Notify.Submit, "show a desktop notification after submitting an edit")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Float64Var(&r.brushSize, "brush", cfg.BrushSize, "brush width in image pixels")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.Usage = usageFunc(r)
	return r
}

// resolveTheme picks the theme named by the flag, THUMBMASK_THEME or the
// config, in that order.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("THUMBMASK_THEME")
	}
	if name == "" {
		name = r.config.Theme
	}
	if t, ok := r.config.Themes[name]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && name != "default" {
			r.log.Warn("failed to load theme, using default", "theme", name, "err", err)
		}
		return theme.Default()
	}
	return t
}

// newMasker builds a masker configured from the flags and theme.
func (r *root) newMasker(enabled bool) *masker.Masker {
	return masker.New(
		masker.WithBrushSize(r.brushSize),
		masker.WithEnabled(enabled),
		masker.WithStyle(render.StyleFromTheme(r.activeTheme)),
		masker.WithLogger(r.log),
	)
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.notifier.Enable(notify.EventExport, r.exportAlerts)
	r.notifier.Enable(notify.EventSubmit, r.submitAlerts)
	r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	r := newRoot(ctx)
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		switch {
		case errors.As(err, &uerr):
			fmt.Fprintln(os.Stderr, uerr.Error())
		case errors.Is(err, flag.ErrHelp):
		default:
			logger.Error("thumbmask command failed", "err", err)
			os.Exit(1)
		}
	}
}
