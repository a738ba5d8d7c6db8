// Package main provides the CLI entrypoint for wordtrainer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/wordtrainer/internal/config"
	"github.com/verte-zerg/wordtrainer/internal/dictionary"
	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/revision"
	"github.com/verte-zerg/wordtrainer/internal/session"
	"github.com/verte-zerg/wordtrainer/internal/store"
	"github.com/verte-zerg/wordtrainer/internal/tui"
	"github.com/verte-zerg/wordtrainer/internal/wordlist"
)

const (
	defaultMode          = "copy"
	defaultMemorizeDelay = 3 * time.Second
	defaultCurveWindow   = 20
	defaultWeakTop       = 8
)

var (
	practiceMode          string
	practiceBudget        int
	practiceStep          int
	practiceMemorizeDelay time.Duration

	dictBaseURL     string
	dictTimeout     time.Duration
	dictConcurrency int

	verbose bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordtrainer [text-file]",
		Short:         "Typed recall drills with spaced revision",
		Long:          "Practice typing a text window by window. Words you get wrong are scheduled for revision.\nPass a text file, or '-' to read the text from stdin.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log dictionary requests to stderr")

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "practice mode: copy or memorize")
	rootCmd.Flags().IntVar(&practiceBudget, "budget", session.DefaultBudget, "initial window size in characters")
	rootCmd.Flags().IntVar(&practiceStep, "step", session.DefaultStep, "budget change per window")
	rootCmd.Flags().DurationVar(&practiceMemorizeDelay, "memorize-delay", defaultMemorizeDelay, "how long memorize mode shows the text")
	addDictionaryFlags(rootCmd)

	rootCmd.AddCommand(newReviseCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newDefineCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addDictionaryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dictBaseURL, "dict-url", dictionary.DefaultBaseURL, "dictionary API base URL")
	cmd.Flags().DurationVar(&dictTimeout, "dict-timeout", dictionary.DefaultTimeout, "timeout per definition lookup")
	cmd.Flags().IntVar(&dictConcurrency, "dict-concurrency", dictionary.DefaultConcurrency, "parallel definition lookups")
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyPracticeConfig(cmd, fileCfg); err != nil {
		return err
	}
	if err := applyDictionaryConfig(cmd, fileCfg); err != nil {
		return err
	}

	cfg, err := practiceConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	stream, source, fromStdin, err := loadPracticeText(args)
	if err != nil {
		return err
	}
	cfg.TextPath = source

	ctx := cmd.Context()
	st, lock, err := openLocked(ctx)
	if err != nil {
		return err
	}
	defer closeLocked(st, lock)

	sched, err := loadScheduler(ctx, st)
	if err != nil {
		return err
	}

	sess, err := session.New(stream, cfg.Mode, session.Config{InitialBudget: cfg.InitialBudget, Step: cfg.Step})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	today := revision.Day(time.Now())
	final, err := runDrill(sess, tui.Options{
		Recorder:      sched,
		Today:         today,
		MemorizeDelay: cfg.MemorizeDelay,
		Lookup:        newLookupFunc(),
	}, fromStdin)
	if err != nil {
		return err
	}

	if err := sched.Save(ctx, st); err != nil {
		return err
	}
	return saveHistory(ctx, st, final, cfg.Mode, source)
}

func newReviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revise",
		Short: "Revise the words due today",
		Args:  cobra.NoArgs,
		RunE:  runReviseCmd,
	}
	cmd.Flags().IntVar(&practiceBudget, "budget", session.DefaultBudget, "initial window size in characters")
	cmd.Flags().IntVar(&practiceStep, "step", session.DefaultStep, "budget change per window")
	addDictionaryFlags(cmd)
	return cmd
}

func runReviseCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "budget", &practiceBudget, fileCfg.Practice.Budget)
	applyIntConfig(cmd, "step", &practiceStep, fileCfg.Practice.Step)
	if err := applyDictionaryConfig(cmd, fileCfg); err != nil {
		return err
	}
	cfg := model.Config{
		Mode:          model.ModeRevision,
		InitialBudget: practiceBudget,
		Step:          practiceStep,
		MemorizeDelay: practiceMemorizeDelay,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	st, lock, err := openLocked(ctx)
	if err != nil {
		return err
	}
	defer closeLocked(st, lock)

	sched, err := loadScheduler(ctx, st)
	if err != nil {
		return err
	}
	today := revision.Day(time.Now())
	due := sched.DueWords(today)
	if len(due) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No words to revise today.")
		return err
	}

	sess, err := session.New(wordlist.NewStream(due), model.ModeRevision, session.Config{InitialBudget: cfg.InitialBudget, Step: cfg.Step})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	final, err := runDrill(sess, tui.Options{
		Today:    today,
		Lookup:   newLookupFunc(),
		DueCount: len(due),
	}, false)
	if err != nil {
		return err
	}

	reviewed := final.Session().ApplyReviews(sched, today)
	if err := sched.Save(ctx, st); err != nil {
		return err
	}
	if err := saveHistory(ctx, st, final, model.ModeRevision, "revision"); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %d of %d words; %d still due today.\n", reviewed, len(due), sched.DueCount(today))
	return err
}

func runDrill(sess session.Session, opts tui.Options, inputTTY bool) (*tui.Model, error) {
	m := tui.NewModel(sess, opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if inputTTY {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, programOpts...)
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}
	final, ok := finalModel.(*tui.Model)
	if !ok {
		return nil, fmt.Errorf("unexpected TUI model %T", finalModel)
	}
	return final, nil
}

func saveHistory(ctx context.Context, st *store.Store, m *tui.Model, mode model.Mode, source string) error {
	sess := m.Session()
	c := sess.Counters()
	if c.Submissions == 0 || m.StartedAt().IsZero() {
		return nil
	}
	endedAt := time.Now()
	stats := model.SessionStats{
		StartedAt:        m.StartedAt(),
		EndedAt:          endedAt,
		Mode:             mode.String(),
		Source:           source,
		CorrectWords:     c.CorrectWords,
		IncorrectWords:   c.IncorrectWords,
		CorrectChars:     c.CorrectChars,
		IncorrectChars:   c.IncorrectChars,
		WindowsCompleted: c.WindowsCompleted,
		DurationMs:       endedAt.Sub(m.StartedAt()).Milliseconds(),
	}
	if _, err := st.InsertSession(ctx, stats, sess.WordStats()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func loadPracticeText(args []string) (wordlist.Stream, string, bool, error) {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	if path == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return wordlist.Stream{}, "", false, fmt.Errorf("no text given: pass a file or pipe text on stdin")
		}
		stream, err := wordlist.ReadText(os.Stdin)
		if err != nil {
			return wordlist.Stream{}, "", false, fmt.Errorf("failed to read text from stdin: %w", err)
		}
		return stream, "stdin", true, nil
	}
	stream, err := wordlist.LoadText(path)
	if err != nil {
		return wordlist.Stream{}, "", false, fmt.Errorf("failed to load text %s: %w", path, err)
	}
	return stream, path, false, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

// openLocked opens the store and claims it for one drill session.
func openLocked(ctx context.Context) (*store.Store, *store.Lock, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	lock, err := st.AcquireLock(ctx)
	if err != nil {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		if errors.Is(err, store.ErrLocked) {
			return nil, nil, fmt.Errorf("another wordtrainer session is running")
		}
		return nil, nil, fmt.Errorf("failed to lock db: %w", err)
	}
	return st, lock, nil
}

func closeLocked(st *store.Store, lock *store.Lock) {
	if err := lock.Release(context.Background()); err != nil {
		logErrf("failed to release session lock: %v\n", err)
	}
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func loadScheduler(ctx context.Context, src revision.RecordStore) (*revision.Scheduler, error) {
	sched, err := revision.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if n := sched.Skipped(); n > 0 {
		logErrf("skipped %d malformed revision records\n", n)
	}
	return sched, nil
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newLookupFunc() tui.LookupFunc {
	provider := dictionary.NewProvider(dictBaseURL, newLogger())
	opts := dictionary.Options{Concurrency: dictConcurrency, Timeout: dictTimeout}
	return func(ctx context.Context, words []string) []dictionary.Result {
		return dictionary.Lookup(ctx, provider, words, opts)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyPracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) error {
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "budget", &practiceBudget, fileCfg.Practice.Budget)
	applyIntConfig(cmd, "step", &practiceStep, fileCfg.Practice.Step)
	if err := applyDurationConfig(cmd, "memorize-delay", &practiceMemorizeDelay, fileCfg.Practice.MemorizeDelay); err != nil {
		return fmt.Errorf("invalid practice.memorize-delay: %w", err)
	}
	return nil
}

func applyDictionaryConfig(cmd *cobra.Command, fileCfg config.FileConfig) error {
	applyStringConfig(cmd, "dict-url", &dictBaseURL, fileCfg.Dictionary.BaseURL)
	applyIntConfig(cmd, "dict-concurrency", &dictConcurrency, fileCfg.Dictionary.Concurrency)
	if err := applyDurationConfig(cmd, "dict-timeout", &dictTimeout, fileCfg.Dictionary.Timeout); err != nil {
		return fmt.Errorf("invalid dictionary.timeout: %w", err)
	}
	if dictConcurrency <= 0 {
		return fmt.Errorf("--dict-concurrency must be > 0")
	}
	if dictTimeout <= 0 {
		return fmt.Errorf("--dict-timeout must be > 0")
	}
	return nil
}

func practiceConfig() (model.Config, error) {
	mode, err := model.ParseMode(practiceMode)
	if err != nil {
		return model.Config{}, err
	}
	if mode == model.ModeRevision {
		return model.Config{}, fmt.Errorf("--mode revision is not a practice mode; use: wordtrainer revise")
	}
	return model.Config{
		Mode:          mode,
		InitialBudget: practiceBudget,
		Step:          practiceStep,
		MemorizeDelay: practiceMemorizeDelay,
	}, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.InitialBudget <= 0 {
		return fmt.Errorf("--budget must be > 0")
	}
	if cfg.Step <= 0 {
		return fmt.Errorf("--step must be > 0")
	}
	if cfg.MemorizeDelay <= 0 {
		return fmt.Errorf("--memorize-delay must be > 0")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return err
	}
	*target = d
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
