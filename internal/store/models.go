package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Region represents the 'regions' table.
type Region struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Acronym string `db:"acronym" json:"acronym"`
}

// State represents the 'states' table.
type State struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Acronym  string `db:"acronym" json:"acronym"`
	RegionID int64  `db:"region_id" json:"region_id"`
}

// StateListItem is a state joined with its region for listings.
type StateListItem struct {
	State
	RegionName string `db:"region_name" json:"region_name"`
}

// Municipality represents the 'municipalities' table.
type Municipality struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	StateID int64  `db:"state_id" json:"state_id"`
}

type MunicipalityListItem struct {
	Municipality
	StateAcronym string `db:"state_acronym" json:"state_acronym"`
}

// District represents the 'districts' table.
type District struct {
	ID             int64  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	MunicipalityID int64  `db:"municipality_id" json:"municipality_id"`
}

type DistrictListItem struct {
	District
	MunicipalityName string `db:"municipality_name" json:"municipality_name"`
	StateAcronym     string `db:"state_acronym" json:"state_acronym"`
}

// Company represents the 'companies' table, keyed by the 8-character CNPJ base.
type Company struct {
	CNPJ                        string          `db:"cnpj" json:"cnpj"`
	LegalName                   string          `db:"legal_name" json:"legal_name"`
	LegalNature                 string          `db:"legal_nature" json:"legal_nature"`
	ResponsibleQualification    string          `db:"responsible_qualification" json:"responsible_qualification"`
	ShareCapital                decimal.Decimal `db:"share_capital" json:"share_capital"`
	CompanySize                 *string         `db:"company_size" json:"company_size"`
	ResponsibleFederativeEntity *string         `db:"responsible_federative_entity" json:"responsible_federative_entity"`
}

// ImportRun represents the 'import_runs' table.
type ImportRun struct {
	ID            string     `db:"id" json:"id"`
	Kind          string     `db:"kind" json:"kind"`
	Source        string     `db:"source" json:"source"`
	Status        string     `db:"status" json:"status"`
	CreatedCount  int64      `db:"created_count" json:"created_count"`
	ProcessedRows int64      `db:"processed_rows" json:"processed_rows"`
	Error         *string    `db:"error" json:"error,omitempty"`
	StartedAt     time.Time  `db:"started_at" json:"started_at"`
	FinishedAt    *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}
