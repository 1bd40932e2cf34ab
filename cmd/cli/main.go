package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"xlmongo/app"
	"xlmongo/domain/pivot"
	"xlmongo/internal/config"
	"xlmongo/internal/container"
	"xlmongo/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlmongo",
		Short: "Move spreadsheet data into MongoDB and export validated pivots back out",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newServeCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var sheet, database, collection string

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import spreadsheet rows into a collection",
		Long: `Import every row of one or more .xlsx or .csv files into a MongoDB collection.

Values are stored as read: numbers stay numbers, dates stay dates, text stays text.
Files are processed in order; sheets without rows are skipped.

Example: xlmongo import enero.xlsx febrero.xlsx --database Construccion --collection diccionario_de_datos`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), app.ImportRequest{
				Paths:      args,
				Sheet:      sheet,
				Database:   database,
				Collection: collection,
			})
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Import only this sheet (default: every sheet)")
	cmd.Flags().StringVar(&database, "database", "", "Target database (default: IMPORT_DATABASE)")
	cmd.Flags().StringVar(&collection, "collection", "", "Target collection (default: IMPORT_COLLECTION)")

	return cmd
}

func newExportCmd() *cobra.Command {
	var output, database, collection, pivotFile string
	var index, values, aggregators, columns []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a collection as a validated workbook with a pivot sheet",
		Long: `Read every document of a collection, coerce each column to its detected type
and write two sheets: the validated table and a cross-tabulation.

The pivot defaults come from PIVOT_SPEC_FILE and the PIVOT_* variables; flags
override them part by part.

Example: xlmongo export --output facturas.xlsx --index "Comprobante Moneda" --aggregators count,sum,mean`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			spec := cfg.Pivot
			if pivotFile != "" {
				if spec, err = config.LoadPivotSpec(pivotFile); err != nil {
					return err
				}
			}
			if len(index) > 0 {
				spec.Index = index
			}
			if len(values) > 0 {
				spec.Values = values
			}
			if len(columns) > 0 {
				spec.Columns = columns
			}
			if len(aggregators) > 0 {
				if spec.Aggregators, err = pivot.ParseAggregators(aggregators); err != nil {
					return err
				}
			}

			return runExport(cmd.Context(), cfg, app.ExportRequest{
				Database:   database,
				Collection: collection,
				Output:     output,
				Spec:       spec,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook (default: EXPORT_OUTPUT)")
	cmd.Flags().StringVar(&database, "database", "", "Source database (default: EXPORT_DATABASE)")
	cmd.Flags().StringVar(&collection, "collection", "", "Source collection (default: EXPORT_COLLECTION)")
	cmd.Flags().StringVar(&pivotFile, "pivot-file", "", "YAML pivot spec replacing the configured one")
	cmd.Flags().StringSliceVar(&index, "index", nil, "Row grouping columns")
	cmd.Flags().StringSliceVar(&values, "values", nil, "Aggregated value columns")
	cmd.Flags().StringSliceVar(&aggregators, "aggregators", nil, "Aggregators: count,sum,mean,min,max,median,std,var,first,last,nunique")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Column grouping columns")

	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve imports and exports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default: PORT)")

	return cmd
}

// connect builds the container and opens the MongoDB connection
func connect(ctx context.Context, cfg *config.Config) (*container.Container, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}
	return c, nil
}

func runImport(ctx context.Context, req app.ImportRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if req.Database == "" {
		req.Database = cfg.Import.Database
	}
	if req.Collection == "" {
		req.Collection = cfg.Import.Collection
	}

	c, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	fmt.Printf("📥 Importing %d file(s) into %s.%s...\n", len(req.Paths), req.Database, req.Collection)
	report, err := c.Importer.Import(ctx, req)
	if report != nil {
		for _, sheet := range report.Sheets {
			if sheet.Skipped {
				fmt.Printf("   ⏭️  %s [%s]: no rows, skipped\n", sheet.File, sheet.Sheet)
				continue
			}
			fmt.Printf("   ✅ %s [%s]: %d rows\n", sheet.File, sheet.Sheet, sheet.Rows)
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n📊 %d documents inserted in %v (run %s)\n", report.Inserted, report.Duration, report.RunID)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, req app.ExportRequest) error {
	if req.Database == "" {
		req.Database = cfg.Export.Database
	}
	if req.Collection == "" {
		req.Collection = cfg.Export.Collection
	}
	if req.Output == "" {
		req.Output = cfg.Export.Output
	}

	c, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	fmt.Printf("📤 Exporting %s.%s...\n", req.Database, req.Collection)
	report, err := c.Exporter.Export(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("\n🔎 COLUMN TYPES (%d rows)\n", report.Rows)
	for _, p := range report.Profiles {
		fmt.Printf("   • %s: %s (%d filled)\n", p.Name, p.Type, p.Filled)
	}

	if report.PivotWarning != "" {
		fmt.Printf("\n⚠️  Pivot skipped: %s\n", report.PivotWarning)
	} else {
		fmt.Printf("\n📈 Pivot: %d rows including the grand total\n", report.PivotRows)
	}
	fmt.Printf("✅ Workbook written to %s (sheets %v) in %v\n", report.Output, report.Sheets, report.Duration)
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	c, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	server, err := c.Server()
	if err != nil {
		return err
	}

	fmt.Printf("🚀 Serving on :%s\n", cfg.Server.Port)
	return server.ListenAndServe(ctx, ":"+cfg.Server.Port, cfg.Server.ShutdownTimeout)
}
