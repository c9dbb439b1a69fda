package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fromage/internal/catalog"
	"fromage/internal/config"
	"fromage/internal/convert"
)

func catalogCmd(cfg *config.Config, defaults *conversionFlags) *cobra.Command {
	databaseURL := cfg.DatabaseURL

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Store string catalogs in PostgreSQL",
		Long: `Imports resource files into a PostgreSQL table, one row per entry, and
exports them back in either format.`,
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "db", databaseURL, "PostgreSQL connection URL")

	cmd.AddCommand(catalogImportCmd(defaults, &databaseURL))
	cmd.AddCommand(catalogExportCmd(defaults, &databaseURL))
	cmd.AddCommand(catalogListCmd(&databaseURL))

	return cmd
}

func catalogImportCmd(defaults *conversionFlags, databaseURL *string) *cobra.Command {
	flags := *defaults
	var source string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a resource file into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(args[0])
			if err != nil {
				return err
			}
			if source == "" {
				source = filepath.Base(args[0])
			}
			return runCatalogImport(*databaseURL, args[0], source, opts)
		},
	}

	flags.registerCSV(cmd)
	flags.registerInput(cmd)
	cmd.Flags().StringVar(&source, "source", "", "Catalog source name (default: file name)")

	return cmd
}

func catalogExportCmd(defaults *conversionFlags, databaseURL *string) *cobra.Command {
	flags := *defaults
	var output string

	cmd := &cobra.Command{
		Use:   "export <source>",
		Short: "Export a stored catalog as a resource file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(args[0])
			if err != nil {
				return err
			}
			return runCatalogExport(*databaseURL, args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&flags.separator, "csv-separator", "c", flags.separator, "CSV separator")
	flags.registerOutput(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "out.txt", "Output file")

	return cmd
}

func catalogListCmd(databaseURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			store, pool, err := openCatalog(ctx, *databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			sources, err := store.Sources(ctx)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalogs imported.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE\tENTRIES\tSTRINGS\tMESSAGES\tIMPORTED")
			for _, s := range sources {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
					s.Name, s.Entries, s.Strings, s.Messages, s.ImportedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

// openCatalog connects to PostgreSQL and makes sure the catalog table exists.
func openCatalog(ctx context.Context, databaseURL string) (*catalog.Store, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Debug().Msg("Connected to PostgreSQL")

	store := catalog.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool, nil
}

// runCatalogImport handles the `catalog import` command.
func runCatalogImport(databaseURL, path, source string, opts convert.Options) error {
	ctx, cancel := setupContext()
	defer cancel()

	in, err := convert.OpenInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	p, err := convert.NewParser(in, opts)
	if err != nil {
		return err
	}

	store, pool, err := openCatalog(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	stats, err := store.Import(ctx, source, p, opts.OnSkip)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	log.Info().
		Str("source", source).
		Str("format", opts.Input.String()).
		Int("entries", stats.Entries).
		Int("skipped", stats.Skipped).
		Msg("Catalog import complete")
	return nil
}

// runCatalogExport handles the `catalog export` command.
func runCatalogExport(databaseURL, source, output string, opts convert.Options) error {
	ctx, cancel := setupContext()
	defer cancel()

	store, pool, err := openCatalog(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	rows, err := store.Entries(ctx, source)
	if err != nil {
		return err
	}
	defer rows.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	stats, err := convert.Compose(w, rows, opts)
	if err != nil {
		return fmt.Errorf("export %s: %w", source, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	log.Info().
		Str("source", source).
		Str("output", output).
		Str("format", opts.Output.String()).
		Int("entries", stats.Entries).
		Msg("Catalog export complete")
	return nil
}
