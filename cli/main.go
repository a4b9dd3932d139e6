// Command dictator-cli drives dictation from a terminal. Space toggles
// recording since terminals do not report key release; results go to the
// clipboard only.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"dictator/pkg/app"
	"dictator/pkg/config"
	"dictator/pkg/desktop"
	"dictator/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dictator-cli: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	store := config.NewStore("")
	cfg, err := app.LoadConfig(store, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs only go to the file.
	log, logFile := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Console: io.Discard})
	defer logFile.Close()

	presenter := &teaPresenter{}
	a, err := app.New(context.Background(), cfg, store, app.Options{
		Presenter: presenter,
		Clipboard: desktop.Clipboard{},
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(newModel(a.Service, a.Transcriber.Name(), cfg.DefaultLanguage), tea.WithContext(ctx))
	presenter.p = p

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.Service.Run(gctx)
		p.Send(stoppedMsg{err: err})
		return err
	})
	g.Go(func() error { return a.Metrics.Serve(gctx) })

	_, runErr := p.Run()
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}
