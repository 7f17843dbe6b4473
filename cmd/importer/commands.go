package main

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/farxc/dados-abertos/internal/ibge"
	"github.com/farxc/dados-abertos/internal/localities"
	"github.com/farxc/dados-abertos/internal/receita"
	"github.com/farxc/dados-abertos/internal/store"
)

func newMigrateCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: run("migrate", func(ctx context.Context, app *application) error {
			app.appLogger.Info("Main", "Schema is up to date")
			return nil
		}),
	}
}

func newImportLocalitiesCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import-localities",
		Short: "Import regions, states, municipalities and districts from the consolidated IBGE districts endpoint",
		Args:  cobra.NoArgs,
		RunE: run("import-localities", func(ctx context.Context, app *application) error {
			client := ibge.NewFullClient(app.config.ibgeBaseURL,
				&http.Client{Timeout: ibge.FullDistrictsTimeout}, app.config.ibgePace, app.appLogger)
			importer := localities.NewFullImporter(app.storage, client, app.appLogger)

			return recordRun(ctx, app.storage, app.appLogger, store.KindLocalities, app.config.ibgeBaseURL,
				func(ctx context.Context) (runTotals, error) {
					summary, err := importer.Run(ctx)
					return runTotals{created: summary.Total()}, err
				})
		}),
	}
}

func newPopulateIBGECmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "populate-ibge",
		Short: "Import states, municipalities and districts in three passes over the IBGE endpoints",
		Args:  cobra.NoArgs,
		RunE: run("populate-ibge", func(ctx context.Context, app *application) error {
			client := ibge.NewClient(app.config.ibgeBaseURL, &http.Client{Timeout: ibge.DefaultTimeout}, app.appLogger)
			importer := localities.NewPassImporter(app.storage, client, app.appLogger)

			return recordRun(ctx, app.storage, app.appLogger, store.KindIBGEPasses, app.config.ibgeBaseURL,
				func(ctx context.Context) (runTotals, error) {
					summary, err := importer.Run(ctx)
					return runTotals{created: summary.Total()}, err
				})
		}),
	}
}

func newPopulateCompaniesCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "populate-companies <url>",
		Short: "Download the Receita Federal companies archive and upsert its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			return run("populate-companies", func(ctx context.Context, app *application) error {
				archivePath := filepath.Join(app.config.dataDir, receita.ArchiveName)
				downloader := receita.NewDownloader(nil, app.appLogger)
				upserter := receita.NewUpserter(app.storage, app.config.chunkSize, app.appLogger)

				return recordRun(ctx, app.storage, app.appLogger, store.KindCompanies, url,
					func(ctx context.Context) (runTotals, error) {
						result, err := upserter.Populate(ctx, downloader, url, archivePath)
						return runTotals{created: result.Created, processed: result.Rows}, err
					})
			})(cmd, args)
		},
	}
}
