package ibge

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Typed records handed to the importers.

type Region struct {
	ID      int64
	Name    string
	Acronym string
}

type State struct {
	ID      int64
	Name    string
	Acronym string
	Region  Region
}

type Mesoregion struct {
	ID    int64
	Name  string
	State State
}

type Microregion struct {
	ID         int64
	Name       string
	Mesoregion Mesoregion
}

// Municipality carries its ancestry chain. Microregion is nil when the
// upstream record has none.
type Municipality struct {
	ID          int64
	Name        string
	Microregion *Microregion
}

// State resolves the federative unit through the ancestry chain.
func (m Municipality) State() (State, bool) {
	if m.Microregion == nil {
		return State{}, false
	}
	return m.Microregion.Mesoregion.State, true
}

// District as served by the three-endpoint client: the municipality is
// referenced by id only.
type District struct {
	ID             int64
	Name           string
	MunicipalityID int64
}

// FullDistrict embeds the municipality with its full ancestry chain.
type FullDistrict struct {
	ID           int64
	Name         string
	Municipality Municipality
}

// ValidationError names the record kind and the offending field path.
type ValidationError struct {
	Record string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: field %q %s", e.Record, e.Field, e.Reason)
}

// Wire shapes as served by servicodados.ibge.gov.br. Pointer ids let a
// missing key fail "required" while still accepting zero.

type regionWire struct {
	ID    *int64 `json:"id" validate:"required,min=0"`
	Nome  string `json:"nome" validate:"required"`
	Sigla string `json:"sigla" validate:"required"`
}

type stateWire struct {
	ID     *int64      `json:"id" validate:"required,min=0"`
	Nome   string      `json:"nome" validate:"required"`
	Sigla  string      `json:"sigla" validate:"required"`
	Regiao *regionWire `json:"regiao" validate:"required"`
}

type mesoregionWire struct {
	ID   *int64     `json:"id" validate:"required,min=0"`
	Nome string     `json:"nome" validate:"required"`
	UF   *stateWire `json:"UF" validate:"required"`
}

type microregionWire struct {
	ID          *int64          `json:"id" validate:"required,min=0"`
	Nome        string          `json:"nome" validate:"required"`
	Mesorregiao *mesoregionWire `json:"mesorregiao" validate:"required"`
}

type municipalityWire struct {
	ID           *int64           `json:"id" validate:"required,min=0"`
	Nome         string           `json:"nome" validate:"required"`
	Microrregiao *microregionWire `json:"microrregiao" validate:"omitempty"`
}

type municipalityRefWire struct {
	ID *int64 `json:"id" validate:"required,min=0"`
}

type districtWire struct {
	ID        *int64               `json:"id" validate:"required,min=0"`
	Nome      string               `json:"nome" validate:"required"`
	Municipio *municipalityRefWire `json:"municipio" validate:"required"`
}

type fullDistrictWire struct {
	ID        *int64            `json:"id" validate:"required,min=0"`
	Nome      string            `json:"nome" validate:"required"`
	Municipio *municipalityWire `json:"municipio" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode unmarshals one raw record into its wire shape and runs the struct
// rules, translating both kinds of failure into a ValidationError.
func decode(record string, raw []byte, wire any) error {
	if err := json.Unmarshal(raw, wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{
				Record: record,
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("must be %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return &ValidationError{Record: record, Reason: err.Error()}
	}

	if err := validate.Struct(wire); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{Record: record, Field: fieldPath(fe.Namespace()), Reason: reason(fe)}
		}
		return &ValidationError{Record: record, Reason: err.Error()}
	}
	return nil
}

// fieldPath drops the struct type name validator puts first in a namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func ParseState(raw []byte) (State, error) {
	var w stateWire
	if err := decode("state", raw, &w); err != nil {
		return State{}, err
	}
	return w.typed(), nil
}

func ParseMunicipality(raw []byte) (Municipality, error) {
	var w municipalityWire
	if err := decode("municipality", raw, &w); err != nil {
		return Municipality{}, err
	}
	return w.typed(), nil
}

func ParseDistrict(raw []byte) (District, error) {
	var w districtWire
	if err := decode("district", raw, &w); err != nil {
		return District{}, err
	}
	return District{ID: *w.ID, Name: w.Nome, MunicipalityID: *w.Municipio.ID}, nil
}

func ParseFullDistrict(raw []byte) (FullDistrict, error) {
	var w fullDistrictWire
	if err := decode("district", raw, &w); err != nil {
		return FullDistrict{}, err
	}
	return FullDistrict{ID: *w.ID, Name: w.Nome, Municipality: w.Municipio.typed()}, nil
}

// ParseRecord validates an already-decoded JSON object, such as one built
// in memory, with the parser for that record kind.
func ParseRecord[T any](record map[string]any, parse func([]byte) (T, error)) (T, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		var zero T
		return zero, &ValidationError{Record: "raw", Reason: err.Error()}
	}
	return parse(raw)
}

func (w *regionWire) typed() Region {
	return Region{ID: *w.ID, Name: w.Nome, Acronym: w.Sigla}
}

func (w *stateWire) typed() State {
	return State{ID: *w.ID, Name: w.Nome, Acronym: w.Sigla, Region: w.Regiao.typed()}
}

func (w *municipalityWire) typed() Municipality {
	m := Municipality{ID: *w.ID, Name: w.Nome}
	if micro := w.Microrregiao; micro != nil {
		meso := micro.Mesorregiao
		m.Microregion = &Microregion{
			ID:   *micro.ID,
			Name: micro.Nome,
			Mesoregion: Mesoregion{
				ID:    *meso.ID,
				Name:  meso.Nome,
				State: meso.UF.typed(),
			},
		}
	}
	return m
}
