package main

import (
	"net/http"
)

// @Summary		Get import history
// @Description	Latest importer runs, newest first.
// @Tags			Imports
// @Produce		json
// @Param			limit	query		int	false	"Limit the number of results"	default(10)
// @Success		200		{object}	response.APIResponse[[]store.ImportRun]
// @Failure		400		{object}	response.ErrorResponse
// @Failure		500		{object}	response.ErrorResponse
// @Router			/imports/history [get]
func (app *application) handleGetImportHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query(), 10, 100)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := app.store.ImportRuns.Latest(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get import history: "+err.Error())
		return
	}
	writeData(w, "Successfully retrieved latest import runs", runs)
}
