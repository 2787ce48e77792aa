package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/config"
	"github.com/Veraticus/miles-to-go/internal/model"
	"github.com/Veraticus/miles-to-go/internal/resolve"
	"github.com/Veraticus/miles-to-go/internal/storage"
)

func labelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Manage business labels",
		Long: `View and manage the manual address-to-business mapping and the
persisted lookup cache.`,
	}

	cmd.AddCommand(labelsListCmd())
	cmd.AddCommand(labelsAddCmd())
	cmd.AddCommand(labelsRemoveCmd())
	cmd.AddCommand(labelsStatsCmd())

	return cmd
}

func labelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manual mappings and cached labels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			manual, err := resolve.LoadManualMap(cfg.ManualMappingPath)
			if err != nil {
				return err
			}

			entries := manual.Entries()
			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Printf("Manual mappings (%d):\n", len(keys))
			for _, k := range keys {
				fmt.Printf("  %-48s %s\n", k, entries[k])
			}

			store, err := storage.NewSQLiteStore(cfg.CacheDBPath)
			if err != nil {
				return fmt.Errorf("failed to open label cache: %w", err)
			}
			defer func() { _ = store.Close() }()
			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate label cache: %w", err)
			}

			cached, err := store.AllLabels(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("\nCached labels (%d):\n", len(cached))
			for _, e := range cached {
				fmt.Printf("  %-48s %-28s %s\n", e.AddressKey, e.Label, e.Source)
			}

			return nil
		},
	}
}

func labelsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <address> <business>",
		Short: "Add a manual address-to-business mapping",
		Long: `Add an entry to the manual mapping file. Manual entries take
precedence over every other label source.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			manual, err := resolve.LoadManualMap(cfg.ManualMappingPath)
			if err != nil {
				return err
			}

			manual.Set(args[0], args[1])
			if err := manual.Save(cfg.ManualMappingPath); err != nil {
				return err
			}

			slog.Info("Added manual mapping", "address", args[0], "business", args[1])
			return nil
		},
	}
}

func labelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <address>",
		Short: "Remove a label by address",
		Long: `Remove an address from the manual mapping and from the lookup
cache. The next analyze run will resolve it fresh.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			removed := false

			manual, err := resolve.LoadManualMap(cfg.ManualMappingPath)
			if err != nil {
				return err
			}
			if manual.Delete(args[0]) {
				if err := manual.Save(cfg.ManualMappingPath); err != nil {
					return err
				}
				removed = true
				slog.Info("Removed manual mapping", "address", args[0])
			}

			store, err := storage.NewSQLiteStore(cfg.CacheDBPath)
			if err != nil {
				return fmt.Errorf("failed to open label cache: %w", err)
			}
			defer func() { _ = store.Close() }()
			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate label cache: %w", err)
			}

			err = store.DeleteLabel(cmd.Context(), model.NormalizeAddress(args[0]))
			switch {
			case err == nil:
				removed = true
				slog.Info("Removed cached label", "address", args[0])
			case !errors.Is(err, common.ErrNotFound):
				return err
			}

			if !removed {
				return common.NewUserError(fmt.Sprintf("no label found for %q", args[0]), common.ErrNotFound)
			}
			return nil
		},
	}
}

func labelsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show label cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStore(cfg.CacheDBPath)
			if err != nil {
				return fmt.Errorf("failed to open label cache: %w", err)
			}
			defer func() { _ = store.Close() }()
			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate label cache: %w", err)
			}

			cached, err := store.AllLabels(cmd.Context())
			if err != nil {
				return err
			}

			bySource := make(map[model.LabelSource]int)
			for _, e := range cached {
				bySource[e.Source]++
			}

			fmt.Printf("Cached labels: %d\n", len(cached))
			sources := make([]string, 0, len(bySource))
			for s := range bySource {
				sources = append(sources, string(s))
			}
			sort.Strings(sources)
			for _, s := range sources {
				fmt.Printf("  %-12s %d\n", s, bySource[model.LabelSource(s)])
			}

			// Top entries by use count
			sort.Slice(cached, func(i, j int) bool { return cached[i].UseCount > cached[j].UseCount })
			top := cached
			if len(top) > 10 {
				top = top[:10]
			}
			if len(top) > 0 {
				fmt.Println("\nMost used:")
				for _, e := range top {
					fmt.Printf("  %4d  %-28s %s\n", e.UseCount, e.Label, e.AddressKey)
				}
			}

			return nil
		},
	}
}
