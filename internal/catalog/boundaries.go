package catalog

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/fetcher"
)

// FetchBoundaryArchive downloads a zipped shapefile bundle (http, https, or
// ftp) into destDir, extracts it, and returns the path of the .shp member.
// Boundary datasets ship as zip archives because a shapefile is really a
// sidecar family (.shp, .dbf, .shx) that must travel together.
func FetchBoundaryArchive(ctx context.Context, rawURL, destDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "catalog: parse boundary url %s", rawURL)
	}

	zipPath := filepath.Join(destDir, "boundaries.zip")
	var n int64
	switch u.Scheme {
	case "http", "https":
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		n, err = f.DownloadToFile(ctx, rawURL, zipPath)
	case "ftp":
		f := fetcher.NewFTPFetcher(fetcher.FTPOptions{})
		n, err = f.DownloadToFile(ctx, rawURL, zipPath)
	default:
		return "", eris.Errorf("catalog: unsupported boundary url scheme %q", u.Scheme)
	}
	if err != nil {
		return "", eris.Wrap(err, "catalog: download boundary archive")
	}
	zap.L().Info("boundary archive downloaded",
		zap.String("url", rawURL),
		zap.Int64("bytes", n),
	)

	files, err := fetcher.ExtractZIP(zipPath, destDir)
	if err != nil {
		return "", eris.Wrap(err, "catalog: extract boundary archive")
	}
	for _, path := range files {
		if strings.EqualFold(filepath.Ext(path), ".shp") {
			return path, nil
		}
	}
	return "", eris.Errorf("catalog: no .shp member in %s", rawURL)
}
