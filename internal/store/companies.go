package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// existingCodesBatch keeps IN lists under the bind-variable limits of both drivers.
const existingCodesBatch = 1000

type CompanyFilter struct {
	LegalName   string
	CompanySize string
	Page        int
	PageSize    int
}

type CompanyStore struct {
	q sqlx.ExtContext
}

func (cs *CompanyStore) ExistingCodes(ctx context.Context, codes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(codes))

	err := forEachBatch(len(codes), existingCodesBatch, func(lo, hi int) error {
		query, args, err := sqlx.In(`SELECT cnpj FROM companies WHERE cnpj IN (?)`, codes[lo:hi])
		if err != nil {
			return err
		}

		var found []string
		if err := sqlx.SelectContext(ctx, cs.q, &found, cs.q.Rebind(query), args...); err != nil {
			return err
		}
		for _, code := range found {
			existing[code] = struct{}{}
		}
		return nil
	})
	return existing, errors.Wrap(err, "lookup existing companies")
}

func (cs *CompanyStore) BulkInsert(ctx context.Context, companies []Company, batchSize int) (int64, error) {
	var inserted int64
	err := forEachBatch(len(companies), batchSize, func(lo, hi int) error {
		batch := companies[lo:hi]
		query := `INSERT INTO companies (cnpj, legal_name, legal_nature, responsible_qualification,
			share_capital, company_size, responsible_federative_entity) VALUES ` + placeholders(len(batch), 7)

		n, err := execAffected(ctx, cs.q, query, companyArgs(batch))
		inserted += n
		return err
	})
	return inserted, errors.Wrap(err, "bulk insert companies")
}

// BulkUpdate replaces every non-key column of the given companies.
func (cs *CompanyStore) BulkUpdate(ctx context.Context, companies []Company, batchSize int) (int64, error) {
	var updated int64
	err := forEachBatch(len(companies), batchSize, func(lo, hi int) error {
		batch := companies[lo:hi]
		query := `INSERT INTO companies (cnpj, legal_name, legal_nature, responsible_qualification,
			share_capital, company_size, responsible_federative_entity) VALUES ` + placeholders(len(batch), 7) + `
			ON CONFLICT (cnpj) DO UPDATE SET
				legal_name = excluded.legal_name,
				legal_nature = excluded.legal_nature,
				responsible_qualification = excluded.responsible_qualification,
				share_capital = excluded.share_capital,
				company_size = excluded.company_size,
				responsible_federative_entity = excluded.responsible_federative_entity`

		n, err := execAffected(ctx, cs.q, query, companyArgs(batch))
		updated += n
		return err
	})
	return updated, errors.Wrap(err, "bulk update companies")
}

func (cs *CompanyStore) Get(ctx context.Context, cnpj string) (*Company, error) {
	var c Company
	err := sqlx.GetContext(ctx, cs.q, &c, cs.q.Rebind(`SELECT cnpj, legal_name, legal_nature,
		responsible_qualification, share_capital, company_size, responsible_federative_entity
		FROM companies WHERE cnpj = ?`), cnpj)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get company %s", cnpj)
	}
	return &c, nil
}

func (cs *CompanyStore) List(ctx context.Context, filter CompanyFilter) (Page[Company], error) {
	w := &where{}
	w.contains("legal_name", filter.LegalName)
	if filter.CompanySize != "" {
		w.add("company_size = ?", filter.CompanySize)
	}

	page, err := listPage[Company](ctx, cs.q,
		`SELECT COUNT(*) FROM companies`,
		`SELECT cnpj, legal_name, legal_nature, responsible_qualification,
		share_capital, company_size, responsible_federative_entity FROM companies`,
		"legal_name", w, filter.Page, filter.PageSize)
	return page, errors.Wrap(err, "list companies")
}

func companyArgs(batch []Company) []any {
	args := make([]any, 0, len(batch)*7)
	for _, c := range batch {
		args = append(args,
			c.CNPJ,
			c.LegalName,
			c.LegalNature,
			c.ResponsibleQualification,
			c.ShareCapital,
			c.CompanySize,
			c.ResponsibleFederativeEntity,
		)
	}
	return args
}
