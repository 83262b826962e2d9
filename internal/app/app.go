// Package app runs a Lua scenario against a fresh form and prints the
// resulting form state. It wires together the defaults loader, the script
// harness and, in watch mode, the file watcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dshills/formsync/internal/config"
	"github.com/dshills/formsync/internal/formstate"
	"github.com/dshills/formsync/internal/identity"
	"github.com/dshills/formsync/internal/script"
	"github.com/dshills/formsync/internal/watcher"
)

// Options configures the application.
type Options struct {
	// ScriptPath is the Lua scenario to run.
	ScriptPath string

	// DefaultsPath is an optional TOML, YAML or JSON document holding the
	// form's default values.
	DefaultsPath string

	// Overrides are path=value pairs applied to the defaults.
	Overrides []string

	// Query narrows the printed snapshot with a gjson path.
	Query string

	// KeyPrefix switches item keys to a predictable sequence.
	KeyPrefix string

	// Mode and ReValidateMode name the validation modes.
	Mode           string
	ReValidateMode string

	// Watch reruns the scenario whenever the script or defaults change.
	Watch    bool
	Debounce time.Duration

	// Timeout bounds one scenario run.
	Timeout time.Duration

	// Color enables colored output.
	Color bool
}

// Application runs scenarios.
type Application struct {
	opts Options
	out  io.Writer
	log  *slog.Logger

	loader       *config.Loader
	mode, reMode formstate.Mode
}

// New creates a new Application with the given options.
func New(opts Options, out io.Writer, log *slog.Logger) (*Application, error) {
	if opts.ScriptPath == "" {
		return nil, ErrNoScript
	}
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	app := &Application{
		opts:   opts,
		out:    out,
		log:    log,
		loader: config.NewLoader(config.WithLogger(log)),
		mode:   formstate.OnSubmit,
		reMode: formstate.OnChange,
	}

	var err error
	if opts.Mode != "" {
		if app.mode, err = formstate.ParseMode(opts.Mode); err != nil {
			return nil, opError("mode", opts.Mode, err)
		}
	}
	if opts.ReValidateMode != "" {
		if app.reMode, err = formstate.ParseMode(opts.ReValidateMode); err != nil {
			return nil, opError("revalidate mode", opts.ReValidateMode, err)
		}
	}
	return app, nil
}

// Run executes the scenario once, or until ctx is done in watch mode.
func (app *Application) Run(ctx context.Context) error {
	if !app.opts.Watch {
		return app.RunOnce(ctx)
	}
	return app.watch(ctx)
}

// RunOnce builds a form, runs the scenario against it and prints the final
// snapshot. The snapshot is printed even when the script fails part way.
func (app *Application) RunOnce(ctx context.Context) error {
	defaults := map[string]any{}
	if app.opts.DefaultsPath != "" {
		var err error
		if defaults, err = app.loader.Load(app.opts.DefaultsPath); err != nil {
			return opError("load", app.opts.DefaultsPath, err)
		}
	}
	defaults, err := applyOverrides(defaults, app.opts.Overrides)
	if err != nil {
		return err
	}

	var scriptOpts []script.Option
	scriptOpts = append(scriptOpts, script.WithOutput(app.out), script.WithLogger(app.log))
	if app.opts.Timeout > 0 {
		scriptOpts = append(scriptOpts, script.WithTimeout(app.opts.Timeout))
	}
	s := script.New(scriptOpts...)
	defer s.Close()

	formOpts := []formstate.Option{
		formstate.WithDefaultValues(defaults),
		formstate.WithValidator(s.Validator()),
		formstate.WithMode(app.mode),
		formstate.WithReValidateMode(app.reMode),
		formstate.WithLogger(app.log),
		// The printed snapshot reads every derived tree.
		formstate.WithInterest(formstate.Interest{Dirty: true, Touched: true, Validity: true}),
	}
	if app.opts.KeyPrefix != "" {
		formOpts = append(formOpts, formstate.WithKeyGenerator(identity.Sequence(app.opts.KeyPrefix)))
	}
	store := formstate.New(formOpts...)
	defer store.Close()
	s.Attach(store)

	start := time.Now()
	runErr := opError("run", app.opts.ScriptPath, s.DoFile(ctx, app.opts.ScriptPath))
	stats := store.Stats()
	app.log.Debug("scenario finished",
		"script", app.opts.ScriptPath,
		"duration", time.Since(start),
		"validations", stats.Validations,
		"publishes", stats.Publishes,
	)

	doc, err := render(store.Snapshot(), app.opts.Query, app.opts.Color)
	if err != nil {
		return errors.Join(runErr, err)
	}
	if _, err := app.out.Write(doc); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// watch runs the scenario and reruns it after every change to the script
// or the defaults file. Run failures are logged and do not stop the loop.
func (app *Application) watch(ctx context.Context) error {
	w, err := watcher.New(watcher.WithDebounce(app.opts.Debounce), watcher.WithLogger(app.log))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	files := []string{app.opts.ScriptPath}
	if app.opts.DefaultsPath != "" {
		files = append(files, app.opts.DefaultsPath)
	}
	if err := w.Add(files...); err != nil {
		return opError("watch", app.opts.ScriptPath, err)
	}

	if err := app.RunOnce(ctx); err != nil {
		app.log.Error("scenario failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			app.log.Info("rerunning scenario", "path", ev.Path, "op", ev.Op.String())
			if err := app.RunOnce(ctx); err != nil {
				app.log.Error("scenario failed", "err", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			app.log.Warn("watch error", "err", err)
		}
	}
}
