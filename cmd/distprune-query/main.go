package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"distprune/internal/database"
	"distprune/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := pflag.String("db", "distprune.db", "Path to run history database")
	recent := pflag.Int("recent", 0, "Show N most recent runs")
	runID := pflag.Int64("run", 0, "Show every event of a run")
	unresolved := pflag.Int64("unresolved", -1, "Show unresolved methods of a run: --unresolved=ID, or the latest run when no ID is given")
	action := pflag.String("action", "", "Filter events by action (REMOVE_FILE, PRUNE_METHOD, SKIP, ERROR)")
	pathPattern := pflag.String("path", "", "Filter events by path pattern (SQL LIKE syntax)")
	stats := pflag.Bool("stats", false, "Show run statistics")
	days := pflag.Int("days", 30, "Number of days for statistics")
	jsonOutput := pflag.Bool("json", false, "Output in JSON format")
	deleteOlderThan := pflag.Int("delete-older-than", 0, "Delete runs started more than N days ago, then vacuum the database")
	pflag.Lookup("unresolved").NoOptDefVal = "0"
	pflag.Parse()

	// Open database
	db, err := database.NewRunDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *deleteOlderThan > 0:
		n, err := pruneHistory(db, *deleteOlderThan)
		if err != nil {
			log.Fatalf("ERROR: Failed to delete old runs: %v", err)
		}
		fmt.Printf("Deleted %d run(s) older than %d days\n", n, *deleteOlderThan)
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *runID > 0:
		showRun(db, *runID, *jsonOutput)
	case *unresolved >= 0:
		showUnresolved(db, *unresolved, *jsonOutput)
	case *action != "":
		showEvents("Events with action: "+*action, *jsonOutput, func() ([]database.EventRecord, error) {
			return db.GetEventsByAction(*action)
		})
	case *pathPattern != "":
		showEvents("Events matching path pattern: "+*pathPattern, *jsonOutput, func() ([]database.EventRecord, error) {
			return db.GetEventsByPath(*pathPattern)
		})
	default:
		pflag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  distprune-query --recent 10              # Show 10 most recent runs")
		fmt.Println("  distprune-query --run 4                  # Show everything run 4 did")
		fmt.Println("  distprune-query --unresolved             # Methods the latest run could not find")
		fmt.Println("  distprune-query --unresolved=4           # Methods run 4 could not find")
		fmt.Println("  distprune-query --action REMOVE_FILE     # Show only file removals")
		fmt.Println("  distprune-query --path '%/internal/%'    # Events below internal/")
		fmt.Println("  distprune-query --stats                  # Show run statistics")
		fmt.Println("  distprune-query --delete-older-than 90   # Drop history older than 90 days")
		os.Exit(exitcodes.InvalidConfig)
	}
}

// pruneHistory removes runs and their events older than days and reclaims the space
func pruneHistory(db *database.RunDB, days int) (int64, error) {
	n, err := db.DeleteOldRuns(days)
	if err != nil {
		return 0, err
	}
	if err := db.Vacuum(); err != nil {
		return n, fmt.Errorf("vacuum: %w", err)
	}
	return n, nil
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func showStats(db *database.RunDB, days int, jsonOutput bool) {
	stats, err := db.GetRunStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		printJSON(stats)
		return
	}

	fmt.Printf("Run Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Runs:       %d\n", stats.TotalRuns)
	fmt.Printf("Failed Runs:      %d\n", stats.FailedRuns)
	fmt.Printf("Files Removed:    %d\n", stats.FilesRemoved)
	fmt.Printf("Methods Pruned:   %d\n", stats.MethodsPruned)
	fmt.Printf("Lines Removed:    %d\n", stats.LinesRemoved)
	fmt.Printf("Unresolved:       %d\n\n", stats.Unresolved)

	printCounts("By Action:", stats.ByAction)
	printCounts("Unresolved By Reason:", stats.UnresolvedReason)
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(title)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
	fmt.Println()
}

func showRecent(db *database.RunDB, limit int, jsonOutput bool) {
	runs, err := db.GetRecentRuns(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent runs: %v", err)
	}

	if jsonOutput {
		printJSON(runs)
		return
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tStarted\tStatus\tRemoved\tPruned\tLines\tUnresolved\tBase Dir")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t-------\t------\t-----\t----------\t--------")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status,
			r.FilesRemoved, r.MethodsPruned, r.LinesRemoved, r.Unresolved, r.BaseDir)
	}
	_ = w.Flush()
}

func showRun(db *database.RunDB, id int64, jsonOutput bool) {
	run, err := db.GetRun(id)
	if err != nil {
		log.Fatalf("ERROR: Failed to get run %d: %v", id, err)
	}
	events, err := db.GetRunEvents(id)
	if err != nil {
		log.Fatalf("ERROR: Failed to get events of run %d: %v", id, err)
	}

	if jsonOutput {
		printJSON(struct {
			Run    *database.RunRecord    `json:"run"`
			Events []database.EventRecord `json:"events"`
		}{run, events})
		return
	}

	fmt.Printf("Run %d (%s) started %s\n", run.ID, run.Status, run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", run.ErrorMessage)
	}
	fmt.Println()
	printEvents(events)
}

func showUnresolved(db *database.RunDB, id int64, jsonOutput bool) {
	if id == 0 {
		latest, err := db.GetLatestRunID()
		if err != nil {
			log.Fatalf("ERROR: Failed to find latest run: %v", err)
		}
		id = latest
	}

	events, err := db.GetUnresolved(id)
	if err != nil {
		log.Fatalf("ERROR: Failed to get unresolved methods of run %d: %v", id, err)
	}

	if jsonOutput {
		printJSON(events)
		return
	}

	fmt.Printf("Unresolved methods of run %d\n\n", id)
	printEvents(events)
}

func showEvents(title string, jsonOutput bool, query func() ([]database.EventRecord, error)) {
	events, err := query()
	if err != nil {
		log.Fatalf("ERROR: Failed to query events: %v", err)
	}

	if jsonOutput {
		printJSON(events)
		return
	}

	fmt.Printf("%s\n\n", title)
	printEvents(events)
}

func printEvents(events []database.EventRecord) {
	if len(events) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tRun\tTimestamp\tAction\tLines\tReason\tPath\tSignature")
	_, _ = fmt.Fprintln(w, "--\t---\t---------\t------\t-----\t------\t----\t---------")
	for _, e := range events {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.RunID, e.Timestamp.Format("2006-01-02 15:04:05"), e.Action,
			formatSpan(e.StartLine, e.EndLine), e.Reason, e.Path, e.Signature)
	}
	_ = w.Flush()
}

func formatSpan(start, end *int) string {
	switch {
	case start == nil:
		return "-"
	case end == nil:
		return strconv.Itoa(*start) + "-?"
	default:
		return fmt.Sprintf("%d-%d", *start, *end)
	}
}
