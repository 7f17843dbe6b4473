package receita

import (
	"encoding/csv"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Positional layout of the headerless registry file.
var companyColumns = []string{
	"cnpj",
	"razao_social",
	"natureza_juridica",
	"qualificacao_responsavel",
	"capital_social",
	"porte_empresa",
	"ente_federativo_responsavel",
}

const DefaultChunkSize = 50000

// ChunkReader turns a Latin-1, semicolon separated registry file into
// DataFrames of at most size rows, all columns typed as strings.
type ChunkReader struct {
	csv  *csv.Reader
	size int
	line int
}

func NewChunkReader(r io.Reader, size int) *ChunkReader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return &ChunkReader{csv: cr, size: size}
}

// Next returns the following chunk, or io.EOF once the file is exhausted.
func (r *ChunkReader) Next() (dataframe.DataFrame, error) {
	records := make([][]string, 0, min(r.size, 4096))

	for len(records) < r.size {
		record, err := r.csv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "read line %d", r.line+1)
		}
		r.line++

		switch {
		case len(record) > len(companyColumns):
			return dataframe.DataFrame{}, errors.Errorf("line %d: expected %d fields, saw %d", r.line, len(companyColumns), len(record))
		case len(record) < len(companyColumns):
			padded := make([]string, len(companyColumns))
			copy(padded, record)
			record = padded
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return dataframe.DataFrame{}, io.EOF
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(false),
		dataframe.Names(companyColumns...),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	)
	return df, df.Error()
}

// Lines is the number of data lines consumed so far.
func (r *ChunkReader) Lines() int {
	return r.line
}
