package receita

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var ErrCompanyFileNotFound = errors.New("no company file found in archive")

// CompanyFile is the registry file opened inside the archive. Closing it
// closes the archive as well.
type CompanyFile struct {
	io.Reader
	Name string

	entry   io.Closer
	archive *zip.ReadCloser
}

func (f *CompanyFile) Close() error {
	f.entry.Close()
	return f.archive.Close()
}

func isCompanyFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, ".csv") || strings.Contains(lower, ".emprecsv")
}

// OpenCompanyFile opens the first entry of the zip at path whose name marks
// it as registry data.
func OpenCompanyFile(path string) (*CompanyFile, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", path)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isCompanyFile(f.Name) {
			continue
		}
		entry, err := f.Open()
		if err != nil {
			r.Close()
			return nil, errors.Wrapf(err, "open %s in %s", f.Name, path)
		}
		return &CompanyFile{Reader: entry, Name: f.Name, entry: entry, archive: r}, nil
	}

	r.Close()
	return nil, errors.Wrap(ErrCompanyFileNotFound, path)
}
