package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partnerBody(name string) domain.CreatePartnerRequest {
	return domain.CreatePartnerRequest{
		Name:             name,
		Industry:         "Automotive",
		Location:         "Chennai",
		EmployeeCount:    "1000+",
		FoundedYear:      1985,
		TrainingPrograms: []string{"Robotics"},
	}
}

func TestPartnerHandler_ListAndIndustries(t *testing.T) {
	env := setupHandlers(t)
	testutil.CreateTestPartner(t, env.db, "Tata Skills")
	rr := serve(env.partners.Create, asAdmin(jsonRequest(t, http.MethodPost, "/api/partners", partnerBody("Chennai Auto Works"))))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = serve(env.partners.List, httptest.NewRequest(http.MethodGet, "/api/partners?industry=automotive", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp paged[domain.PartnerDTO]
	decodeBody(t, rr, &resp)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Chennai Auto Works", resp.Data[0].Name)

	rr = serve(env.partners.Industries, httptest.NewRequest(http.MethodGet, "/api/partners/industries", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var industries []string
	decodeBody(t, rr, &industries)
	assert.Equal(t, []string{"Automotive", "Manufacturing"}, industries)
}

func TestPartnerHandler_CRUD(t *testing.T) {
	env := setupHandlers(t)

	rr := serve(env.partners.Create, asAdmin(jsonRequest(t, http.MethodPost, "/api/partners", partnerBody("Chennai Auto Works"))))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created domain.PartnerDTO
	decodeBody(t, rr, &created)

	rr = serve(env.partners.Create, asAdmin(jsonRequest(t, http.MethodPost, "/api/partners", partnerBody("Chennai Auto Works"))))
	assert.Equal(t, http.StatusConflict, rr.Code)

	update := partnerBody("Chennai Auto Works")
	update.Industry = "Automotive & EV"
	req := withURLParam(asAdmin(jsonRequest(t, http.MethodPut, "/", update)), "id", created.ID.String())
	rr = serve(env.partners.Update, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated domain.PartnerDTO
	decodeBody(t, rr, &updated)
	assert.Equal(t, "Automotive & EV", updated.Industry)

	rr = serve(env.partners.GetByID, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", created.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(env.partners.Delete, withURLParam(asAdmin(httptest.NewRequest(http.MethodDelete, "/", nil)), "id", created.ID.String()))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(env.partners.GetByID, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", created.ID.String()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPartnerHandler_WritesRequireAdmin(t *testing.T) {
	env := setupHandlers(t)

	req := asUser(jsonRequest(t, http.MethodPost, "/api/partners", partnerBody("Nope")), "user_c", domain.RoleCorporate)
	rr := serve(env.partners.Create, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	body := partnerBody("Nope")
	body.Industry = ""
	rr = serve(env.partners.Create, asAdmin(jsonRequest(t, http.MethodPost, "/api/partners", body)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "industry is required", decodeProblem(t, rr).Errors["industry"])
}
