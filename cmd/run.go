package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/app"
	"github.com/abhisek/critree/internal/config"
	"github.com/abhisek/critree/internal/session"
	"github.com/abhisek/critree/internal/store"
)

// newSession resolves configuration into a session. events may be nil.
func newSession(cfg *config.Config, events store.EventRepo) (*session.Session, error) {
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	diagCfg, err := cfg.DiagnoserConfig()
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		LLM:       llmCfg,
		Diagnoser: diagCfg,
		Builder:   cfg.BuilderOptions(),
		Events:    events,
		Logger:    logger,
	}), nil
}

// runApp opens the store, builds the session, and launches the TUI. A store
// that cannot be opened only disables history.
func runApp(cmd *cobra.Command, initialPath string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var events store.EventRepo
	st, err := openStore(cmd)
	if err != nil {
		logger.Warn("running without history", zap.Error(err))
		fmt.Fprintln(os.Stderr, "History unavailable:", err)
	} else {
		defer st.Close()
		events = st.EventRepo()
	}

	sess, err := newSession(cfg, events)
	if err != nil {
		return err
	}
	return app.Run(app.Options{Session: sess, InitialPath: initialPath})
}
