package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"akifune.dev/availability"
	"akifune.dev/dateutil"
	"akifune.dev/directory"
	"akifune.dev/seastyle"
	"akifune.dev/store"
)

// Fallback marina when none is given and the directory is unreachable.
const (
	defaultMarinaCd   = "3802"
	defaultMarinaName = "勝どきマリーナ"
)

var (
	flagMarina   = flag.String("marina", "", "marina code or name (default 勝どきマリーナ)")
	flagMonth    = flag.String("month", "", "month to fetch as YYYY-MM (default current month)")
	flagDBPath   = flag.String("db", "akifune.sqlite3", "database path")
	flagBaseURL  = flag.String("base-url", "", "override the upstream base URL (e.g. a local relay)")
	flagInterval = flag.Duration("interval", 30*time.Minute, "refetch interval in watch mode")
	flagOnce     = flag.Bool("once", false, "fetch the month once and exit")
	flagJSON     = flag.Bool("json", false, "print results as JSON instead of summaries")
	flagMarinas  = flag.Bool("marinas", false, "list the marina directory and exit")
	flagMonths   = flag.Bool("months", false, "list selectable months and exit")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	client := seastyle.New()
	if *flagBaseURL != "" {
		client.BaseURL = *flagBaseURL
	}

	if *flagMonths {
		return listMonths(time.Now())
	}
	if *flagMarinas {
		return listMarinas(ctx, client)
	}

	marinaCd, marinaName, err := resolveMarina(ctx, client, *flagMarina)
	if err != nil {
		return err
	}

	monthID := *flagMonth
	if monthID == "" {
		monthID = dateutil.MonthID(time.Now())
	}
	if _, err := dateutil.EnumerateMonthDays(monthID); err != nil {
		return err
	}

	db, err := store.Open(*flagDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := store.RunMigrations(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	st := store.New(db)

	slog.Info("akifune: starting", "marina", marinaName, "marinaCd", marinaCd, "month", monthID)

	if *flagOnce {
		return fetchMonth(ctx, client, st, marinaCd, monthID)
	}

	// Watch mode: refetch on an interval until interrupted.
	ticker := time.NewTicker(*flagInterval)
	defer ticker.Stop()
	for {
		if err := fetchMonth(ctx, client, st, marinaCd, monthID); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("month fetch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// resolveMarina turns the -marina flag (code, name, or empty) into a
// marina code. Names go through the live directory; when the directory
// is unreachable a bare code is still usable.
func resolveMarina(ctx context.Context, client *seastyle.Client, query string) (code, name string, err error) {
	if query == "" {
		return defaultMarinaCd, defaultMarinaName, nil
	}

	dir, dirErr := client.FetchMarinaDirectory(ctx)
	if dirErr != nil {
		if isDigits(query) {
			slog.Warn("marina directory unreachable, using raw code", "marinaCd", query, "error", dirErr)
			return query, query, nil
		}
		return "", "", fmt.Errorf("resolve marina %q: %w", query, dirErr)
	}

	idx := directory.NewIndex(dir.Marinas)
	if entry, ok := idx.FindByCode(query); ok {
		return entry.Code, entry.Name, nil
	}
	if entry, ok := idx.FindFirst(query); ok {
		return entry.Code, entry.Name, nil
	}
	return "", "", fmt.Errorf("marina %q not found in the directory", query)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// listMonths prints the months -month accepts, current month first in
// the window.
func listMonths(now time.Time) error {
	options := dateutil.MonthOptions(now, 0, 6)
	if *flagJSON {
		return printJSON(options)
	}
	for _, option := range options {
		marker := "  "
		if option.IsCurrent {
			marker = "* "
		}
		fmt.Printf("%s%s  %s\n", marker, option.Value, option.Label)
	}
	return nil
}

func listMarinas(ctx context.Context, client *seastyle.Client) error {
	dir, err := client.FetchMarinaDirectory(ctx)
	if err != nil {
		return fmt.Errorf("fetch marina directory: %w", err)
	}

	if *flagJSON {
		return printJSON(dir.Marinas)
	}
	for _, m := range dir.Marinas {
		line := fmt.Sprintf("%s  %s", m.Code, m.Name)
		if m.Prefecture != "" {
			line += "（" + m.Prefecture + "）"
		}
		fmt.Println(line)
	}
	return nil
}

func fetchMonth(ctx context.Context, client *seastyle.Client, st *store.Store, marinaCd, monthID string) error {
	runID, err := st.StartRun(ctx, marinaCd, monthID)
	if err != nil {
		return err
	}

	daysFetched := 0
	slotsSaved := 0
	progress := func(_, _ int, outcome seastyle.DayOutcome) {
		if outcome.Err != nil {
			fmt.Printf("%s %s  取得失敗: %v\n", outcome.Day.Label, outcome.Day.WeekdayLabel, outcome.Err)
			return
		}
		daysFetched++

		saved, err := st.SaveDay(ctx, marinaCd, outcome.Day.ISO, outcome.Result.Result)
		if err != nil {
			slog.Error("save failed", "date", outcome.Day.ISO, "error", err)
		}
		slotsSaved += saved

		if !*flagJSON {
			fmt.Printf("%s %s  %s\n", outcome.Day.Label, outcome.Day.WeekdayLabel, summarize(outcome.Result.Result))
		}
	}

	outcomes, err := client.FetchMonth(ctx, marinaCd, monthID, progress)
	if err != nil {
		_ = st.FailRun(context.WithoutCancel(ctx), runID, daysFetched, slotsSaved, err)
		return err
	}
	if err := st.CompleteRun(ctx, runID, daysFetched, slotsSaved); err != nil {
		return err
	}

	if *flagJSON {
		return printJSON(outcomes)
	}
	fmt.Printf("%s: %d日分を取得、%d件のスロットを保存しました\n", monthID, daysFetched, slotsSaved)
	return nil
}

// summarize renders one day's availability as a single line.
func summarize(result *availability.Result) string {
	if result == nil || result.Summary.Total == 0 {
		return "スロットなし"
	}
	s := result.Summary
	return fmt.Sprintf("全%d件（空き%d / 残りわずか%d / 満席%d / 不明%d）",
		s.Total,
		s.Statuses[availability.StatusVacant],
		s.Statuses[availability.StatusFew],
		s.Statuses[availability.StatusFull],
		s.Statuses[availability.StatusUnknown])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
