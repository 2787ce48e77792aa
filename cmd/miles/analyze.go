package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/miles-to-go/internal/aggregate"
	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/config"
	"github.com/Veraticus/miles-to-go/internal/engine"
	"github.com/Veraticus/miles-to-go/internal/geo"
	"github.com/Veraticus/miles-to-go/internal/model"
	"github.com/Veraticus/miles-to-go/internal/nominatim"
	"github.com/Veraticus/miles-to-go/internal/places"
	"github.com/Veraticus/miles-to-go/internal/report"
	"github.com/Veraticus/miles-to-go/internal/resolve"
	"github.com/Veraticus/miles-to-go/internal/service"
	"github.com/Veraticus/miles-to-go/internal/sheets"
	"github.com/Veraticus/miles-to-go/internal/storage"
	"github.com/Veraticus/miles-to-go/internal/triplog"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <trip-log.csv>",
		Short: "Categorize a trip log and report weekly mileage",
		Long: `Parse an exported vehicle trip log, categorize every trip as commute,
business, or personal, resolve destination business names, and print
weekly and overall mileage summaries.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("lookup", false, "enable remote business name lookups")
	cmd.Flags().String("start", "", "only include trips on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "only include trips on or before this date (YYYY-MM-DD)")
	cmd.Flags().Bool("detailed", false, "print every categorized trip")
	cmd.Flags().String("export", "", "export format (csv, sheets)")
	cmd.Flags().String("out", ".", "output directory for csv export")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lookupFlag, _ := cmd.Flags().GetBool("lookup")
	allowRemote := lookupFlag || cfg.LookupEnabled

	start, err := parseDateFlag(cmd, "start")
	if err != nil {
		return err
	}
	end, err := parseDateFlag(cmd, "end")
	if err != nil {
		return err
	}

	log, err := triplog.ReadFile(args[0])
	if err != nil {
		if errors.Is(err, common.ErrEmptyLog) {
			return common.NewUserError("the trip log contains no usable trips", err)
		}
		return err
	}
	if len(log.Skipped) > 0 {
		for _, rowErr := range log.Skipped {
			slog.Debug("skipped log row", "line", rowErr.Line, "error", rowErr.Err)
		}
	}

	trips := triplog.Filter(log.Trips, start, end)
	if len(trips) == 0 {
		return common.NewUserError("no trips fall inside the requested date range", common.ErrEmptyLog)
	}

	for i := range trips {
		if !geo.PlausibleDistance(&trips[i]) {
			slog.Warn("logged distance is shorter than the straight line between endpoints",
				"start", trips[i].StartTime, "distance_miles", trips[i].DistanceMiles)
		}
	}

	trips = engine.MergeShortStops(trips, cfg.Merge)
	if flagged := engine.FlagMicroTrips(trips, cfg.MicroTripMaxMiles); flagged > 0 {
		slog.Debug("flagged micro trips", "count", flagged)
	}

	store, err := storage.NewSQLiteStore(cfg.CacheDBPath)
	if err != nil {
		return fmt.Errorf("failed to open label cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate label cache: %w", err)
	}
	if err := store.WarmLabelCache(ctx); err != nil {
		slog.Warn("failed to warm label cache", "error", err)
	}

	manual, err := resolve.LoadManualMap(cfg.ManualMappingPath)
	if err != nil {
		return err
	}

	resolver := resolve.NewResolver(store, manual, buildLookups(cfg), allowRemote, slog.Default())
	eng := engine.New(engine.DefaultRules(cfg), resolver, slog.Default())

	bar := progressbar.Default(int64(len(trips)), "Categorizing trips")
	categorized := eng.CategorizeAll(ctx, trips, func(done int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()

	weeks := aggregate.Weekly(categorized, cfg.TrackedAreas)
	overall := aggregate.Overall(categorized, cfg.TrackedAreas)

	fmt.Println(report.RenderWeekly(weeks))
	fmt.Println(report.RenderOverall(overall))
	if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
		fmt.Println(report.RenderTrips(categorized))
	}
	if skipped := report.RenderSkipped(len(log.Skipped)); skipped != "" {
		fmt.Print(skipped)
	}

	exportFormat, _ := cmd.Flags().GetString("export")
	switch exportFormat {
	case "":
		return nil
	case "csv":
		outDir, _ := cmd.Flags().GetString("out")
		return exportCSV(outDir, categorized, weeks, overall)
	case "sheets":
		return exportSheets(ctx, categorized, weeks, overall)
	default:
		return fmt.Errorf("unknown export format %q (expected csv or sheets)", exportFormat)
	}
}

// buildLookups assembles the remote provider chain: Places first when an
// API key is configured, Nominatim as the free fallback.
func buildLookups(cfg *config.Config) []service.Lookup {
	var lookups []service.Lookup

	if cfg.PlacesAPIKey != "" {
		client, err := places.NewClient(cfg.PlacesAPIKey, slog.Default())
		if err != nil {
			slog.Warn("places provider unavailable", "error", err)
		} else {
			lookups = append(lookups, client)
		}
	}

	lookups = append(lookups, nominatim.NewClient(slog.Default()))
	return lookups
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q (expected YYYY-MM-DD)", name, value)
	}
	return t, nil
}

func exportCSV(outDir string, trips []model.CategorizedTrip, weeks []model.WeeklySummary, overall model.OverallSummary) error {
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"weekly_summary.csv", func(f *os.File) error { return report.WriteWeeklyCSV(f, weeks) }},
		{"detailed_trips.csv", func(f *os.File) error { return report.WriteTripsCSV(f, trips) }},
		{"summary.csv", func(f *os.File) error { return report.WriteSummaryCSV(f, overall) }},
	}

	for _, file := range files {
		path := filepath.Join(outDir, file.name)
		f, err := os.Create(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := file.write(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		slog.Info("wrote export", "path", path)
	}

	return nil
}

func exportSheets(ctx context.Context, trips []model.CategorizedTrip, weeks []model.WeeklySummary, overall model.OverallSummary) error {
	sheetsCfg := sheets.DefaultConfig()
	if err := sheetsCfg.LoadFromEnv(); err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, sheetsCfg, slog.Default())
	if err != nil {
		return err
	}

	return writer.Write(ctx, trips, weeks, overall)
}
