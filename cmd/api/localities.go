package main

import (
	"net/http"

	"github.com/farxc/dados-abertos/internal/store"
)

const (
	statesPageSize         = 20
	municipalitiesPageSize = 50
	districtsPageSize      = 50
)

// @Summary		List regions
// @Tags			Localities
// @Produce		json
// @Success		200	{object}	response.APIResponse[[]store.Region]
// @Failure		500	{object}	response.ErrorResponse
// @Router			/regions [get]
func (app *application) handleListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := app.store.Regions.List(r.Context())
	if err != nil {
		app.appLogger.Error("API", "List regions failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list regions")
		return
	}
	writeData(w, "Successfully retrieved regions", regions)
}

// @Summary		List states
// @Description	States ordered by name, 20 per page, each with its region name.
// @Tags			Localities
// @Produce		json
// @Param			name		query		string	false	"Name contains (case-insensitive)"
// @Param			region_id	query		int		false	"Region id"
// @Param			page		query		int		false	"Page number"	default(1)
// @Success		200			{object}	response.APIResponse[store.Page[store.StateListItem]]
// @Failure		400			{object}	response.ErrorResponse
// @Router			/states [get]
func (app *application) handleListStates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePage(q)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	regionID, err := parseOptionalID(q, "region_id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := app.store.States.List(r.Context(), store.StateFilter{
		Name:     q.Get("name"),
		RegionID: regionID,
		Page:     page,
		PageSize: statesPageSize,
	})
	if err != nil {
		app.appLogger.Error("API", "List states failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list states")
		return
	}
	writeData(w, "Successfully retrieved states", data)
}

// @Summary		List municipalities
// @Tags			Localities
// @Produce		json
// @Param			name		query		string	false	"Name contains (case-insensitive)"
// @Param			state_id	query		int		false	"State id"
// @Param			page		query		int		false	"Page number"	default(1)
// @Success		200			{object}	response.APIResponse[store.Page[store.MunicipalityListItem]]
// @Failure		400			{object}	response.ErrorResponse
// @Router			/municipalities [get]
func (app *application) handleListMunicipalities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePage(q)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	stateID, err := parseOptionalID(q, "state_id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := app.store.Municipalities.List(r.Context(), store.MunicipalityFilter{
		Name:     q.Get("name"),
		StateID:  stateID,
		Page:     page,
		PageSize: municipalitiesPageSize,
	})
	if err != nil {
		app.appLogger.Error("API", "List municipalities failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list municipalities")
		return
	}
	writeData(w, "Successfully retrieved municipalities", data)
}

// @Summary		List districts
// @Tags			Localities
// @Produce		json
// @Param			name			query		string	false	"Name contains (case-insensitive)"
// @Param			municipality_id	query		int		false	"Municipality id"
// @Param			page			query		int		false	"Page number"	default(1)
// @Success		200				{object}	response.APIResponse[store.Page[store.DistrictListItem]]
// @Failure		400				{object}	response.ErrorResponse
// @Router			/districts [get]
func (app *application) handleListDistricts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePage(q)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	municipalityID, err := parseOptionalID(q, "municipality_id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := app.store.Districts.List(r.Context(), store.DistrictFilter{
		Name:           q.Get("name"),
		MunicipalityID: municipalityID,
		Page:           page,
		PageSize:       districtsPageSize,
	})
	if err != nil {
		app.appLogger.Error("API", "List districts failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list districts")
		return
	}
	writeData(w, "Successfully retrieved districts", data)
}
