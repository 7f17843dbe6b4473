package receita

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/store"
)

type Result struct {
	Chunks  int   `json:"chunks"`
	Rows    int64 `json:"rows"`
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
	Skipped int64 `json:"skipped"`
}

// Upserter classifies each chunk of registry rows against the store and
// writes them with one bulk insert and one bulk update.
type Upserter struct {
	storage   *store.Storage
	chunkSize int
	batchSize int
	appLogger *logger.Logger
}

func NewUpserter(storage *store.Storage, chunkSize int, appLogger *logger.Logger) *Upserter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Upserter{
		storage:   storage,
		chunkSize: chunkSize,
		batchSize: store.BulkBatchSize,
		appLogger: appLogger,
	}
}

// Populate makes sure the archive is on disk, then imports its company file.
// Nothing touches the database when the download or the lookup fails.
func (u *Upserter) Populate(ctx context.Context, dl *Downloader, url, archivePath string) (Result, error) {
	if _, err := dl.EnsureArchive(ctx, url, archivePath); err != nil {
		return Result{}, err
	}
	return u.ImportArchive(ctx, archivePath)
}

func (u *Upserter) ImportArchive(ctx context.Context, archivePath string) (Result, error) {
	const component = "CompanyUpserter"

	f, err := OpenCompanyFile(archivePath)
	if err != nil {
		u.appLogger.Error(component, "Cannot open company file: %v", err)
		return Result{}, err
	}
	defer f.Close()

	u.appLogger.Info(component, "Processing %s from %s", f.Name, archivePath)
	return u.Import(ctx, f)
}

// Import streams r chunk by chunk inside a single transaction.
func (u *Upserter) Import(ctx context.Context, r io.Reader) (Result, error) {
	const component = "CompanyUpserter"
	var result Result

	reader := NewChunkReader(r, u.chunkSize)

	err := u.storage.WithTx(ctx, func(tx *store.Storage) error {
		for {
			df, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			companies, skipped := companiesFromFrame(&df)
			if skipped > 0 {
				u.appLogger.Warn(component, "Chunk %d: skipped %d rows without registry code", result.Chunks+1, skipped)
			}

			created, updated, err := u.upsertChunk(ctx, tx, companies)
			if err != nil {
				return errors.Wrapf(err, "chunk %d", result.Chunks+1)
			}

			result.Chunks++
			result.Rows += int64(df.Nrow())
			result.Created += created
			result.Updated += updated
			result.Skipped += int64(skipped)

			u.appLogger.Info(component, "Processed chunk %d: total rows so far=%d created=%d updated=%d",
				result.Chunks, result.Rows, result.Created, result.Updated)
		}
	})
	if err != nil {
		u.appLogger.Error(component, "Import rolled back after %d rows: %v", result.Rows, err)
		return Result{}, err
	}

	u.appLogger.Info(component, "Import finished: rows=%d created=%d updated=%d", result.Rows, result.Created, result.Updated)
	return result, nil
}

func (u *Upserter) upsertChunk(ctx context.Context, tx *store.Storage, companies []store.Company) (created, updated int64, err error) {
	if len(companies) == 0 {
		return 0, 0, nil
	}

	codes := make([]string, len(companies))
	for i, c := range companies {
		codes[i] = c.CNPJ
	}

	existing, err := tx.Companies.ExistingCodes(ctx, codes)
	if err != nil {
		return 0, 0, err
	}

	toCreate := make([]store.Company, 0, len(companies)-len(existing))
	toUpdate := make([]store.Company, 0, len(existing))
	for _, c := range companies {
		if _, ok := existing[c.CNPJ]; ok {
			toUpdate = append(toUpdate, c)
		} else {
			toCreate = append(toCreate, c)
		}
	}

	if len(toCreate) > 0 {
		if _, err := tx.Companies.BulkInsert(ctx, toCreate, u.batchSize); err != nil {
			return 0, 0, errors.Wrap(err, "bulk insert")
		}
	}
	if len(toUpdate) > 0 {
		if _, err := tx.Companies.BulkUpdate(ctx, toUpdate, u.batchSize); err != nil {
			return 0, 0, errors.Wrap(err, "bulk update")
		}
	}
	return int64(len(toCreate)), int64(len(toUpdate)), nil
}
