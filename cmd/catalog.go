package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/fetcher"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the mountain catalog",
}

var catalogImportFile string

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import mountains from a JSONL, CSV, or XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		importer := catalog.NewImporter(store)

		var n int
		switch strings.ToLower(filepath.Ext(catalogImportFile)) {
		case ".jsonl", ".json":
			f, err := os.Open(catalogImportFile)
			if err != nil {
				return eris.Wrap(err, "open import file")
			}
			defer f.Close()
			n, err = importer.ImportJSONL(ctx, f)
			if err != nil {
				return eris.Wrap(err, "import jsonl")
			}
		case ".csv":
			f, err := os.Open(catalogImportFile)
			if err != nil {
				return eris.Wrap(err, "open import file")
			}
			defer f.Close()
			n, err = importer.ImportCSV(ctx, f)
			if err != nil {
				return eris.Wrap(err, "import csv")
			}
		case ".xlsx":
			n, err = importer.ImportXLSX(ctx, catalogImportFile)
			if err != nil {
				return eris.Wrap(err, "import xlsx")
			}
		default:
			return eris.Errorf("unsupported import format %q", filepath.Ext(catalogImportFile))
		}

		zap.L().Info("catalog import complete",
			zap.Int("imported", n),
			zap.String("file", catalogImportFile),
		)
		return nil
	},
}

var catalogSeedURL string

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Download a JSONL catalog from a URL and import it",
	Long: `Fetches a JSONL mountain catalog over HTTP and imports it. An ETag
sidecar next to the catalog database skips the download when the remote
file has not changed since the last seed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		etagPath := cfg.Catalog.Path + ".etag"
		prev, _ := os.ReadFile(etagPath)

		body, etag, changed, err := f.DownloadIfChanged(ctx, catalogSeedURL, strings.TrimSpace(string(prev)))
		if err != nil {
			return eris.Wrap(err, "download catalog")
		}
		if !changed {
			zap.L().Info("catalog unchanged, skipping import", zap.String("url", catalogSeedURL))
			return nil
		}
		defer body.Close()

		n, err := catalog.NewImporter(store).ImportJSONL(ctx, body)
		if err != nil {
			return eris.Wrap(err, "import jsonl")
		}
		if etag != "" {
			if err := os.WriteFile(etagPath, []byte(etag), 0o644); err != nil {
				zap.L().Warn("writing etag sidecar", zap.Error(err))
			}
		}

		zap.L().Info("catalog seed complete",
			zap.Int("imported", n),
			zap.String("url", catalogSeedURL),
		)
		return nil
	},
}

var boundariesFlags struct {
	url       string
	shpPath   string
	nameField string
	workDir   string
}

var catalogBoundariesCmd = &cobra.Command{
	Use:   "import-boundaries",
	Short: "Import ski-area boundary polygons from a shapefile",
	Long: `Reads ski-area boundary polygons from a shapefile and attaches the
computed acreage to matching catalog rows. The shapefile can be a local
.shp path or a zip archive fetched over HTTP or FTP.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		shpPath := boundariesFlags.shpPath
		if shpPath == "" {
			if boundariesFlags.url == "" {
				return eris.New("either --shp or --url is required")
			}
			dir := boundariesFlags.workDir
			if dir == "" {
				dir, err = os.MkdirTemp("", "powder-boundaries-*")
				if err != nil {
					return eris.Wrap(err, "create work dir")
				}
				defer os.RemoveAll(dir)
			}
			shpPath, err = catalog.FetchBoundaryArchive(ctx, boundariesFlags.url, dir)
			if err != nil {
				return eris.Wrap(err, "fetch boundary archive")
			}
		}

		n, err := catalog.ImportBoundaries(ctx, store, shpPath, boundariesFlags.nameField)
		if err != nil {
			return eris.Wrap(err, "import boundaries")
		}

		zap.L().Info("boundary import complete",
			zap.Int("matched", n),
			zap.String("shapefile", shpPath),
		)
		return nil
	},
}

var catalogListState string

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog mountains",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		mountains, err := store.ListMountains(ctx, catalog.Filter{State: catalogListState})
		if err != nil {
			return eris.Wrap(err, "list mountains")
		}

		w := newTabWriter()
		fmt.Fprintln(w, "ID\tNAME\tSTATE\tVERT FT\tTRAILS\tPASSES\tNIGHT")
		for _, m := range mountains {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%v\n",
				m.ID, m.Name, m.State, m.VerticalDropFt, m.NumTrails,
				strings.Join(m.PassTypes, ","), m.HasNightSkiing,
			)
		}
		return w.Flush()
	},
}

func init() {
	catalogImportCmd.Flags().StringVar(&catalogImportFile, "file", "", "path to JSONL, CSV, or XLSX file (required)")
	_ = catalogImportCmd.MarkFlagRequired("file")

	catalogSeedCmd.Flags().StringVar(&catalogSeedURL, "url", "", "catalog JSONL URL (required)")
	_ = catalogSeedCmd.MarkFlagRequired("url")

	bf := catalogBoundariesCmd.Flags()
	bf.StringVar(&boundariesFlags.url, "url", "", "zip archive URL (http, https, or ftp)")
	bf.StringVar(&boundariesFlags.shpPath, "shp", "", "local shapefile path")
	bf.StringVar(&boundariesFlags.nameField, "name-field", "name", "attribute field holding the area name")
	bf.StringVar(&boundariesFlags.workDir, "work-dir", "", "extraction directory (default temp)")

	catalogListCmd.Flags().StringVar(&catalogListState, "state", "", "filter by state code")

	catalogCmd.AddCommand(catalogImportCmd, catalogSeedCmd, catalogBoundariesCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
