package receita

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"

	"github.com/farxc/dados-abertos/internal/store"
)

// ParseCapital reads a comma-decimal amount such as "1000,00". Missing or
// unparseable values are zero.
func ParseCapital(raw string) decimal.Decimal {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

func getStr(df *dataframe.DataFrame, col string, row int) string {
	e := df.Col(col).Elem(row)
	if e.IsNA() {
		return ""
	}
	return strings.TrimSpace(e.String())
}

func getNullableStr(df *dataframe.DataFrame, col string, row int) *string {
	s := getStr(df, col, row)
	if s == "" {
		return nil
	}
	return &s
}

// companiesFromFrame maps a chunk to rows keyed by registry code. A code
// repeated within the chunk keeps its last occurrence; rows without a code
// are counted in skipped.
func companiesFromFrame(df *dataframe.DataFrame) (companies []store.Company, skipped int) {
	n := df.Nrow()
	index := make(map[string]int, n)
	companies = make([]store.Company, 0, n)

	for i := 0; i < n; i++ {
		code := getStr(df, "cnpj", i)
		if code == "" {
			skipped++
			continue
		}

		c := store.Company{
			CNPJ:                        code,
			LegalName:                   getStr(df, "razao_social", i),
			LegalNature:                 getStr(df, "natureza_juridica", i),
			ResponsibleQualification:    getStr(df, "qualificacao_responsavel", i),
			ShareCapital:                ParseCapital(getStr(df, "capital_social", i)),
			CompanySize:                 getNullableStr(df, "porte_empresa", i),
			ResponsibleFederativeEntity: getNullableStr(df, "ente_federativo_responsavel", i),
		}

		if at, ok := index[code]; ok {
			companies[at] = c
			continue
		}
		index[code] = len(companies)
		companies = append(companies, c)
	}
	return companies, skipped
}
