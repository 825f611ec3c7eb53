package main

// Run an import from local files against the configured database:
//   go run ./cmd/hseimport run --kind trainings --sheet trainings.xlsx --zip certificates.zip --user 1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hse-backend/internal/access"
	"hse-backend/internal/bootstrap"
	"hse-backend/internal/massimport"
	"hse-backend/internal/shared/config"
)

type runOptions struct {
	kind       string
	sheetPath  string
	zipPath    string
	userID     string
	role       string
	locale     string
	progressID string
}

// importRunner is swapped in tests.
type importRunner func(ctx context.Context, req massimport.Request) (massimport.Summary, error)

func main() {
	if err := newRootCmd(runWithDatabase).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(run importRunner) *cobra.Command {
	root := &cobra.Command{
		Use:          "hseimport",
		Short:        "Run HSE mass imports from local files",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(run), newKindsCmd())
	return root
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported import kinds",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range massimport.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}

func newRunCmd(run importRunner) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import a spreadsheet (and its ZIP of PDFs) and print the run summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(opts)
			if err != nil {
				return err
			}
			summary, runErr := run(cmd.Context(), req)
			if runErr != nil && !errors.Is(runErr, massimport.ErrPrecondition) {
				return runErr
			}
			if err := writeSummary(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "Import kind (required): trainings, aptitudes, sanctions, qualifications, ppe_issuances")
	cmd.Flags().StringVar(&opts.sheetPath, "sheet", "", "Path to the xlsx or csv sheet (required)")
	cmd.Flags().StringVar(&opts.zipPath, "zip", "", "Path to the ZIP of PDFs named by CIN")
	cmd.Flags().StringVar(&opts.userID, "user", "", "Acting user id recorded as creator (required)")
	cmd.Flags().StringVar(&opts.role, "role", access.RoleAdmin, "Acting user role")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Failed-rows report locale (fr or en)")
	cmd.Flags().StringVar(&opts.progressID, "progress-id", "", "Run id (default: generated)")

	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("sheet")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func buildRequest(opts runOptions) (massimport.Request, error) {
	kind := massimport.Kind(strings.ToLower(strings.TrimSpace(opts.kind)))
	if _, err := massimport.SchemaFor(kind); err != nil {
		return massimport.Request{}, err
	}
	sheet, err := os.ReadFile(opts.sheetPath)
	if err != nil {
		return massimport.Request{}, fmt.Errorf("read sheet: %w", err)
	}
	var archive []byte
	if strings.TrimSpace(opts.zipPath) != "" {
		archive, err = os.ReadFile(opts.zipPath)
		if err != nil {
			return massimport.Request{}, fmt.Errorf("read zip: %w", err)
		}
	}
	return massimport.Request{
		Kind:       kind,
		SheetName:  filepath.Base(opts.sheetPath),
		Sheet:      sheet,
		Archive:    archive,
		ProgressID: opts.progressID,
		Locale:     opts.locale,
		User:       access.User{ID: strings.TrimSpace(opts.userID), Role: opts.role},
	}, nil
}

func writeSummary(w io.Writer, summary massimport.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func runWithDatabase(ctx context.Context, req massimport.Request) (massimport.Summary, error) {
	app, err := bootstrap.BuildCLI(ctx, config.Load())
	if err != nil {
		return massimport.Summary{}, err
	}
	defer app.Close()
	return app.ImportService.Run(ctx, req)
}
