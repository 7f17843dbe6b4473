package main

import (
	"net/http"

	"github.com/farxc/dados-abertos/internal/store"
)

const companiesPageSize = 50

// @Summary		List companies
// @Description	Companies ordered by legal name, 50 per page.
// @Tags			Companies
// @Produce		json
// @Param			legal_name		query		string	false	"Legal name contains (case-insensitive)"
// @Param			company_size	query		string	false	"Size class code"
// @Param			page			query		int		false	"Page number"	default(1)
// @Success		200				{object}	response.APIResponse[store.Page[store.Company]]
// @Failure		400				{object}	response.ErrorResponse
// @Router			/companies [get]
func (app *application) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePage(q)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := app.store.Companies.List(r.Context(), store.CompanyFilter{
		LegalName:   q.Get("legal_name"),
		CompanySize: q.Get("company_size"),
		Page:        page,
		PageSize:    companiesPageSize,
	})
	if err != nil {
		app.appLogger.Error("API", "List companies failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list companies")
		return
	}
	writeData(w, "Successfully retrieved companies", data)
}
