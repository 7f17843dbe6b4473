// Package receita loads the Receita Federal company registry ("Empresas")
// archive into the companies table.
package receita

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/farxc/dados-abertos/internal/logger"
)

// ArchiveName is the fixed file name the archive is cached under.
const ArchiveName = "Empresas.zip"

type DownloadResult struct {
	Path    string
	Bytes   int64
	Skipped bool
}

type Downloader struct {
	client    *http.Client
	appLogger *logger.Logger
}

func NewDownloader(client *http.Client, appLogger *logger.Logger) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{client: client, appLogger: appLogger}
}

// EnsureArchive downloads url to path unless path already exists. The local
// copy is keyed only by path: a different url never invalidates it. A failed
// transfer leaves nothing behind at path.
func (d *Downloader) EnsureArchive(ctx context.Context, url, path string) (DownloadResult, error) {
	const component = "Downloader"

	if _, err := os.Stat(path); err == nil {
		d.appLogger.Info(component, "Archive already present, skipping download: path=%s", path)
		return DownloadResult{Path: path, Skipped: true}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return DownloadResult{}, errors.Wrapf(err, "create directory for %s", path)
	}

	d.appLogger.Info(component, "Downloading archive: url=%s path=%s", url, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return DownloadResult{}, errors.Wrap(err, "build download request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3")

	resp, err := d.client.Do(req)
	if err != nil {
		d.appLogger.Error(component, "HTTP request failed: url=%s error=%v", url, err)
		return DownloadResult{}, errors.Wrapf(err, "download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.appLogger.Error(component, "Non-OK HTTP response: url=%s status=%s", url, resp.Status)
		return DownloadResult{}, errors.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	if resp.ContentLength > 0 {
		d.appLogger.Info(component, "Expected size=%s", humanize.Bytes(uint64(resp.ContentLength)))
	}

	partial := path + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return DownloadResult{}, errors.Wrapf(err, "create %s", partial)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(partial, path)
	}
	if err != nil {
		os.Remove(partial)
		d.appLogger.Error(component, "Download failed, partial file removed: url=%s error=%v", url, err)
		return DownloadResult{}, errors.Wrapf(err, "download %s", url)
	}

	d.appLogger.Info(component, "Download completed: path=%s size=%s", path, humanize.Bytes(uint64(written)))
	return DownloadResult{Path: path, Bytes: written}, nil
}
