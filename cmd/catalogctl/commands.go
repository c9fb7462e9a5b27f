package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"property-catalog/internal/app"
	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"
	"property-catalog/internal/logger"
	"property-catalog/internal/models"
	"property-catalog/internal/repository"

	"github.com/spf13/cobra"
)

// session is an opened backend plus the repository over it
type session struct {
	backend *app.Backend
	repo    repository.PropertyRepo
	log     *logger.Logger
	cleanup config.CleanupConfig
}

func openSession(configPath string) (*session, error) {
	cfg, log, err := app.Bootstrap(configPath)
	if err != nil {
		return nil, err
	}
	backend, err := app.OpenBackend(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &session{
		backend: backend,
		repo:    repository.NewPropertyRepo(backend.Store, log),
		log:     log,
		cleanup: cfg.Cleanup,
	}, nil
}

func (s *session) Close() {
	_ = s.backend.Close()
	s.log.Sync()
}

type listFlags struct {
	city, district, typ, status string
	minPrice, maxPrice          float64
	asJSON                      bool
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.city, "city", "", "city contains")
	cmd.Flags().StringVar(&f.district, "district", "", "district contains")
	cmd.Flags().StringVar(&f.typ, "type", "", "property type (name or code)")
	cmd.Flags().StringVar(&f.status, "status", "", "listing status (name or code)")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "minimum price")
	cmd.Flags().Float64Var(&f.maxPrice, "max-price", 0, "maximum price")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON instead of a table")
}

// criteria converts flags into search criteria; only flags the user set count.
func (f listFlags) criteria(cmd *cobra.Command) (models.SearchCriteria, error) {
	var c models.SearchCriteria
	if cmd.Flags().Changed("city") {
		c.City = &f.city
	}
	if cmd.Flags().Changed("district") {
		c.District = &f.district
	}
	if cmd.Flags().Changed("type") {
		t, err := models.ParsePropertyType(f.typ)
		if err != nil {
			return c, err
		}
		c.Type = &t
	}
	if cmd.Flags().Changed("status") {
		s, err := models.ParseListingStatus(f.status)
		if err != nil {
			return c, err
		}
		c.Status = &s
	}
	if cmd.Flags().Changed("min-price") {
		if !finite(f.minPrice) {
			return c, fmt.Errorf("--min-price must be a finite number")
		}
		c.MinPrice = &f.minPrice
	}
	if cmd.Flags().Changed("max-price") {
		if !finite(f.maxPrice) {
			return c, fmt.Errorf("--max-price must be a finite number")
		}
		c.MaxPrice = &f.maxPrice
	}
	return c, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func listCmd(configPath *string) *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live properties, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := f.criteria(cmd)
			if err != nil {
				return err
			}

			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			properties, err := s.repo.Search(cmd.Context(), criteria)
			if err != nil {
				return fmt.Errorf("failed to list properties: %w", err)
			}

			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), properties)
			}
			printTable(cmd.OutOrStdout(), properties)
			return nil
		},
	}

	f.bind(cmd)
	return cmd
}

func showCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one property with its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.repo.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("property %d not found", id)
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
}

func deleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.repo.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("property %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Property %d deleted.\n", id)
			return nil
		},
	}
}

func purgeCmd(configPath *string) *cobra.Command {
	var (
		retentionDays int
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Physically remove soft-deleted properties past retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.backend.GormDB == nil {
				return fmt.Errorf("purge is not supported on the %s backend", s.backend.Type)
			}

			cfg := cleanup.PurgeConfigFrom(s.cleanup)
			cfg.Reason = models.PurgeReasonManual
			if cmd.Flags().Changed("retention-days") {
				cfg.RetentionDays = retentionDays
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}

			svc := cleanup.NewService(s.backend.GormDB.DB(), s.log)
			result, err := svc.Purge(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			mode := ""
			if result.DryRun {
				mode = " (dry run)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d of %d eligible properties, %d errors%s.\n",
				result.PurgedCount, result.TargetCount, result.ErrorCount, mode)
			for _, msg := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 90, "days a soft-deleted property is kept")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be purged")
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid property id %q", arg)
	}
	return id, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, properties []models.Property) {
	if len(properties) == 0 {
		fmt.Fprintln(w, "No properties found.")
		return
	}
	fmt.Fprintf(w, "%-8s  %-30s  %-16s  %-10s  %-8s  %12s  %6s\n", "ID", "Title", "City", "Type", "Status", "Price", "Images")
	for _, p := range properties {
		fmt.Fprintf(w, "%-8d  %-30.30s  %-16.16s  %-10s  %-8s  %12.2f  %6d\n",
			p.ID, p.Title, p.City, p.Type, p.Status, p.Price, len(p.Images))
	}
}
