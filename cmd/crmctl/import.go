package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	importapp "github.com/crm/backend/internal/application/import"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type importOptions struct {
	entity   string
	file     string
	sheet    string
	mapping  []string
	conflict string
	dryRun   bool
}

// ImportReport is what the import command prints
type ImportReport struct {
	Upload   *importapp.UploadResponse   `json:"upload"`
	Validate *importapp.ValidateResponse `json:"validate"`
	Execute  *importapp.ExecuteResponse  `json:"execute,omitempty"`
}

// parseMapping turns column=field pairs into a Mapping
func parseMapping(pairs []string) (dataimport.Mapping, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(dataimport.Mapping, len(pairs))
	for _, p := range pairs {
		column, field, ok := strings.Cut(p, "=")
		column, field = strings.TrimSpace(column), strings.TrimSpace(field)
		if !ok || column == "" || field == "" {
			return nil, fmt.Errorf("invalid --mapping %q: want column=field", p)
		}
		m[column] = field
	}
	return m, nil
}

// runImport drives upload, validation and execution the way the HTTP
// wizard does. Without an explicit mapping the suggested one is used.
func runImport(ctx context.Context, svc *importapp.Service, tenant uuid.UUID, opts importOptions) (*ImportReport, error) {
	mapping, err := parseMapping(opts.mapping)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report := &ImportReport{}
	report.Upload, err = svc.Upload(ctx, tenant, uuid.Nil, importapp.UploadRequest{
		Entity:   opts.entity,
		FileName: filepath.Base(opts.file),
		Sheet:    opts.sheet,
		Content:  f,
	})
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		mapping = report.Upload.SuggestedMapping
	}

	report.Validate, err = svc.Validate(ctx, tenant, report.Upload.SessionID, importapp.ValidateRequest{Mapping: mapping})
	if err != nil {
		return report, err
	}
	if opts.dryRun {
		return report, svc.Cancel(ctx, tenant, report.Upload.SessionID)
	}

	report.Execute, err = svc.Execute(ctx, tenant, report.Upload.SessionID, importapp.ExecuteRequest{ConflictMode: opts.conflict})
	return report, err
}

func newImportCmd(root *rootOptions) *cobra.Command {
	opts := importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV or XLSX file without going through the API",
		Example: `  crmctl import --entity companies --file companies.csv
  crmctl import --entity contacts --file people.xlsx --mapping "E-mail=email" --conflict update`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := runImport(cmd.Context(), a.services.Import, a.tenant, opts)
			if report != nil {
				if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&opts.entity, "entity", "", "target entity (companies, contacts, competitors, leads, opportunities, expenses)")
	cmd.Flags().StringVar(&opts.file, "file", "", "path to a .csv or .xlsx file")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "xlsx worksheet (default: the first one)")
	cmd.Flags().StringArrayVar(&opts.mapping, "mapping", nil, "column=field pair, repeatable")
	cmd.Flags().StringVar(&opts.conflict, "conflict", "skip", "how to treat existing records: skip, update or fail")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate only")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
