package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"equity-screener/internal/logger"
	"equity-screener/internal/screening"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	jsonOut := flag.Bool("json", false, "print the result as JSON instead of a report")
	outputFile := flag.String("output", "", "also save the JSON result to this file")
	details := flag.String("details", "", "show details for one symbol instead of screening")
	refresh := flag.Bool("refresh", false, "clear the document cache before running")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [name=value ...]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Criteria: max_peg, min_pe, max_pe, max_debt_to_equity, min_sales_growth,")
		fmt.Fprintln(os.Stderr, "          min_profit_growth, require_margin_improvement, max_results,")
		fmt.Fprintln(os.Stderr, "          candidate_list (comma separated symbols)")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Keep stdout clean for the JSON document.
	if *jsonOut {
		_ = os.Setenv("LOG_OUTPUT", "stderr")
	}
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer shutdownSystem()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	input, err := parseAssignments(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}
	criteria, err := screening.ParseCriteria(input, criteriaFromConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rejected criteria: %v\n", err)
		os.Exit(2)
	}

	cache := initializeCache(ctx, cfg, *refresh)
	screener, err := initializeScreener(ctx, cfg, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screener: %v\n", err)
		os.Exit(1)
	}

	if *details != "" {
		d, err := screener.Details(ctx, strings.ToUpper(*details))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Details failed: %v\n", err)
			os.Exit(1)
		}
		if *jsonOut {
			printJSON(d)
		} else {
			printDetails(d)
		}
		return
	}

	if !*jsonOut {
		printBanner(criteria, cfg.Universe.ScanLimit)
	}

	result, err := screener.Screen(ctx, criteria)
	if err != nil {
		if errors.Is(err, screening.ErrInvalidCriteria) {
			fmt.Fprintf(os.Stderr, "Rejected criteria: %v\n", err)
			os.Exit(2)
		}
		logger.ErrorWithErr(ctx, "Screening failed", err)
		fmt.Fprintf(os.Stderr, "Screening failed: %v\n", err)
		os.Exit(1)
	}

	if err := initializeJournal(ctx, cfg).Append(result); err != nil {
		logger.Warn(ctx, "Failed to journal screening run", "run_id", result.RunID, "error", err.Error())
	}

	if *jsonOut {
		printJSON(result)
	} else {
		printResults(result)
	}
	if *outputFile != "" {
		saveResultsJSON(result, *outputFile)
	}
}

// parseAssignments turns name=value arguments into the criteria mapping
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}

func printBanner(c screening.Criteria, scanLimit int) {
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║          Equity Screener - NSE Value & Growth Scan          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("🎯 PEG ≤ %.2f | P/E %.1f–%.1f | D/E ≤ %.2f\n", c.MaxPEG, c.MinPE, c.MaxPE, c.MaxDebtToEquity)
	if c.MinSalesGrowth > 0 || c.MinProfitGrowth > 0 {
		fmt.Printf("📈 Sales growth ≥ %.1f%% | Profit growth ≥ %.1f%%\n", c.MinSalesGrowth, c.MinProfitGrowth)
	}
	if c.RequireMarginImprovement {
		fmt.Println("💹 Margin improvement required (when quarterly data exists)")
	}
	if len(c.CandidateList) > 0 {
		fmt.Printf("🔍 Scanning %d supplied symbols (limit %d)...\n", len(c.CandidateList), scanLimit)
	} else {
		fmt.Printf("🔍 Scanning up to %d symbols from the curated universe...\n", scanLimit)
	}
	fmt.Println("⏳ Requests are paced, this may take a few minutes...")
	fmt.Println()
}

func printResults(result *screening.ScreenResult) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                      SCREENING SUMMARY")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("Run:                %s\n", result.RunID)
	fmt.Printf("Started:            %s\n", result.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration:           %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Scanned:            %d of %d symbols\n", result.Scanned, len(result.Universe))
	fmt.Printf("Matched:            %d (max %d)\n", len(result.Candidates), result.Criteria.MaxResults)
	if result.EarlyStopped {
		fmt.Println("Early stop:         enough matches found, rest of universe skipped")
	}
	if result.TimedOut {
		fmt.Println("⚠️  Timed out:       partial results")
	}
	if result.Cached {
		fmt.Println("Cached:             served from result cache")
	}
	if len(result.Disqualified) > 0 {
		reasons := make([]string, 0, len(result.Disqualified))
		for r := range result.Disqualified {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		fmt.Println("Disqualified:")
		for _, r := range reasons {
			fmt.Printf("  • %-20s %d\n", r, result.Disqualified[r])
		}
	}
	fmt.Println()

	if len(result.Candidates) == 0 {
		fmt.Println("⚠️  No companies met the screening criteria")
		fmt.Println()
		fmt.Println("Consider:")
		fmt.Println("  - Raising max_peg or max_pe")
		fmt.Println("  - Raising max_debt_to_equity")
		fmt.Println("  - Lowering min_sales_growth or min_profit_growth")
		return
	}

	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                     MATCHED COMPANIES")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	for i := range result.Candidates {
		printCandidate(i+1, &result.Candidates[i])
		fmt.Println()
	}
}

func printCandidate(rank int, c *screening.ScoredCandidate) {
	fmt.Printf("📊 Rank #%d: %s - %s (score %.1f)\n", rank, c.Symbol, c.Name, c.MatchScore)
	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Printf("  🏭 Sector:           %s\n", c.Sector)
	fmt.Printf("  💰 Price:            ₹%.2f  |  Market Cap: %s\n", c.CurrentPrice, c.MarketCap)

	peg := fmt.Sprintf("%.2f", c.PEGRatio)
	if c.PEGEstimated {
		peg += " (est. P/E÷10)"
	}
	fmt.Printf("  📐 P/E:              %.2f  |  PEG: %s\n", c.PERatio, peg)

	debt := "flat/rising"
	if c.DebtDecreasing {
		debt = "decreasing"
	}
	fmt.Printf("  🏦 Debt/Equity:      %.2f (%s)\n", c.DebtToEquity, debt)
	fmt.Printf("  📈 Sales Growth:     %.2f%%  |  Profit Growth: %.2f%%\n", c.SalesGrowth, c.ProfitGrowth)

	margin := "not improving"
	if c.MarginImprovement {
		margin = "improving"
	}
	fmt.Printf("  💹 Profit Margin:    %.2f%% (%s)\n", c.ProfitMargin, margin)
	fmt.Printf("  🎯 ROE / ROCE:       %.2f%% / %.2f%%\n", c.ROE, c.ROCE)
}

func printDetails(d *screening.StockDetails) {
	fmt.Printf("📊 %s - %s\n", d.Symbol, d.Name)
	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Printf("  Sector:          %s\n", d.Sector)
	fmt.Printf("  Price:           ₹%.2f\n", d.CurrentPrice)
	fmt.Printf("  Market Cap:      %s\n", d.MarketCap)
	fmt.Printf("  P/E:             %.2f  |  PEG: %.2f\n", d.PERatio, d.PEGRatio)
	fmt.Printf("  Book Value:      %.2f\n", d.BookValue)
	fmt.Printf("  ROE / ROCE:      %.2f%% / %.2f%%\n", d.ROE, d.ROCE)
	fmt.Printf("  Dividend Yield:  %.2f%%\n", d.DividendYield)
	fmt.Printf("  Debt/Equity:     %.2f\n", d.DebtToEquity)
	fmt.Printf("  52W High / Low:  %.2f / %.2f\n", d.Week52High, d.Week52Low)
	if d.Quarterly.QuartersAnalyzed > 0 {
		fmt.Printf("  Quarterly:       sales %.2f%%, profit %.2f%% over %d quarters\n",
			d.Quarterly.SalesGrowth, d.Quarterly.ProfitGrowth, d.Quarterly.QuartersAnalyzed)
	}
	if d.Annual.YearsAnalyzed > 0 {
		fmt.Printf("  Annual D/E:      avg %.2f over %d years (decreasing: %t)\n",
			d.Annual.AvgDebtToEquity, d.Annual.YearsAnalyzed, d.Annual.DebtDecreasing)
	}
	if len(d.PeerComparison) > 0 {
		fmt.Printf("  Peers:           %d rows\n", len(d.PeerComparison))
	}
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write JSON: %v\n", err)
	}
}

func saveResultsJSON(result *screening.ScreenResult, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create JSON file: %v\n", err)
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write JSON: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stderr, "💾 Results saved to %s\n", filename)
}
