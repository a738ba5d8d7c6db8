package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wordtrainer/internal/config"
	"github.com/verte-zerg/wordtrainer/internal/dictionary"
	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/revision"
	"github.com/verte-zerg/wordtrainer/internal/stats"
	"github.com/verte-zerg/wordtrainer/internal/store"
	"github.com/verte-zerg/wordtrainer/internal/wordlist"
)

var (
	wordsDueOnly bool
	wordsWeak    int

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsWeakTop     int

	importReplace bool
)

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List words scheduled for revision",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().BoolVar(&wordsDueOnly, "due", false, "only list words due today")
	cmd.Flags().IntVar(&wordsWeak, "weak", 0, "list words missed over the last N sessions instead")
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if wordsWeak < 0 {
		return fmt.Errorf("--weak must be >= 0")
	}
	if wordsWeak > 0 {
		aggs, err := st.GetWeakWords(cmd.Context(), wordsWeak)
		if err != nil {
			return fmt.Errorf("failed to load weak words: %w", err)
		}
		title := fmt.Sprintf("Weak Words (last %d sessions)", wordsWeak)
		return stats.RenderWordTable(cmd.OutOrStdout(), title, stats.SelectWeakWords(aggs, 0))
	}

	sched, err := loadScheduler(cmd.Context(), st)
	if err != nil {
		return err
	}
	today := revision.Day(time.Now())
	records := sched.Records()
	if wordsDueOnly {
		records = dueRecords(records, today)
	}
	return stats.RenderRecords(cmd.OutOrStdout(), records, today)
}

func dueRecords(records []model.RevisionRecord, today time.Time) []model.RevisionRecord {
	out := records[:0:0]
	for _, rec := range records {
		if !rec.NextDue.After(today) {
			out = append(out, rec)
		}
	}
	return out
}

func newDefineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "define word...",
		Short: "Look up word definitions",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDefineCmd,
	}
	addDictionaryFlags(cmd)
	return cmd
}

func runDefineCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyDictionaryConfig(cmd, fileCfg); err != nil {
		return err
	}
	words := dictionary.Unique(wordlist.Tokenize(strings.Join(args, " ")).Words())
	if len(words) == 0 {
		return fmt.Errorf("no words to look up")
	}
	results := newLookupFunc()(cmd.Context(), words)
	return writeDefinitions(cmd.OutOrStdout(), results)
}

func writeDefinitions(w io.Writer, results []dictionary.Result) error {
	unavailable := 0
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		switch res.Status {
		case dictionary.StatusNotFound:
			if _, err := fmt.Fprintf(w, "%s: no definition found\n", res.Word); err != nil {
				return err
			}
			continue
		case dictionary.StatusUnavailable:
			unavailable++
			logErrf("%s: lookup failed: %v\n", res.Word, res.Err)
			continue
		}
		if _, err := fmt.Fprintln(w, res.Entry.Headword); err != nil {
			return err
		}
		for _, group := range res.Entry.Senses {
			if _, err := fmt.Fprintf(w, "  %s\n", group.PartOfSpeech); err != nil {
				return err
			}
			for n, def := range group.Definitions {
				if _, err := fmt.Fprintf(w, "    %d. %s\n", n+1, def); err != nil {
					return err
				}
			}
		}
	}
	if unavailable == len(results) {
		return fmt.Errorf("dictionary unavailable")
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show drill history stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter: copy, memorize or revision")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsWeakTop, "weak-top", defaultWeakTop, "number of weak words to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	applyIntConfig(cmd, "weak-top", &statsWeakTop, fileCfg.Stats.WeakTop)

	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), cfg, 0)
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsMode != "" {
		mode, err := model.ParseMode(statsMode)
		if err != nil {
			return model.StatsConfig{}, err
		}
		statsMode = mode.String()
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 0")
	}
	return model.StatsConfig{
		Mode:        statsMode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		WeakTop:     statsWeakTop,
	}, nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import file.csv",
		Short: "Import revision records from a CSV file",
		Long:  "Import revision records from a word,date_to_revise,delta CSV file.\nExisting records win over imported duplicates unless --replace is given.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importReplace, "replace", false, "replace all stored records with the file contents")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, lock, err := openLocked(ctx)
	if err != nil {
		return err
	}
	defer closeLocked(st, lock)

	imported, total, err := importRecords(ctx, st, store.NewCSVStore(args[0]), importReplace)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records; %d words scheduled.\n", imported, total)
	return err
}

// importRecords merges the records of src into dst and returns how many were
// added and how many dst holds afterwards.
func importRecords(ctx context.Context, dst, src revision.RecordStore, replace bool) (int, int, error) {
	incoming, err := loadScheduler(ctx, src)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read import file: %w", err)
	}
	var merged *revision.Scheduler
	added := incoming.Len()
	if replace {
		merged = incoming
	} else {
		existing, err := loadScheduler(ctx, dst)
		if err != nil {
			return 0, 0, err
		}
		merged = revision.New(append(existing.Records(), incoming.Records()...))
		added = merged.Len() - existing.Len()
	}
	if err := merged.Save(ctx, dst); err != nil {
		return 0, 0, err
	}
	return added, merged.Len(), nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export file.csv",
		Short: "Export revision records to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sched, err := loadScheduler(ctx, st)
	if err != nil {
		return err
	}
	dst := store.NewCSVStore(args[0])
	if err := sched.Save(ctx, dst); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst.Path(), err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s.\n", sched.Len(), dst.Path())
	return err
}
