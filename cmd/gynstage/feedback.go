package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lionsmanic/gyn-cancer-staging/internal/feedback"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
)

func feedbackCmd() *cobra.Command {
	fb := &cobra.Command{Use: "feedback", Short: "Manage clinician feedback"}
	fb.AddCommand(feedbackListCmd())
	fb.AddCommand(feedbackExportCmd())
	fb.AddCommand(feedbackImportCmd())
	return fb
}

func withStore(ctx context.Context, fn func(context.Context, feedback.Store) error) error {
	store, err := feedback.Open(ctx, cfg().Feedback, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func feedbackListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store feedback.Store) error {
				recorder := service.NewFeedbackRecorder(service.NewStagingService(logger), store, logger)
				records, total, err := recorder.List(ctx, limit, offset)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return printJSON(cmd.OutOrStdout(), map[string]any{"records": records, "total": total})
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Protocol", "TNM", "Suggested", "Clinician", "Agreed", "Updated"})
				for _, r := range records {
					tw.AppendRow(table.Row{r.ID, r.Protocol, r.TNM, r.SuggestedStage, r.ClinicianStage, r.Agreed, r.UpdatedAt.Format("2006-01-02 15:04")})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "", "Total", total})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", service.DefaultFeedbackPageSize, "maximum records")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")
	return cmd
}

func feedbackExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store feedback.Store) error {
				if output == "" || output == "-" {
					return store.ExportJSON(ctx, cmd.OutOrStdout())
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				if err := store.ExportJSON(ctx, f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				logger.WithField("path", output).Info("Feedback exported")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func feedbackImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import records exported by feedback export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			return withStore(cmd.Context(), func(ctx context.Context, store feedback.Store) error {
				imported, skipped, err := store.ImportJSON(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", imported, skipped)
				return nil
			})
		},
	}
}
