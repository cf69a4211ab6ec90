package handlers

import (
	"net/http"
	"testing"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/stretchr/testify/require"
)

func employeeBody(id, phone string) map[string]string {
	return map[string]string{
		"employeeId": id,
		"name":       "Ravi Kumar",
		"email":      "ravi@acme.example",
		"phone":      phone,
		"password":   "password123",
	}
}

func TestCompanyProfile(t *testing.T) {
	e := newTestEnv(t)
	co, token := e.activeCompany("acme", "+919876543210")

	w := e.do(http.MethodGet, "/api/company/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, co.ID, body["id"])
	require.NotContains(t, body, "passwordHash")

	w = e.do(http.MethodPatch, "/api/company/profile", token, map[string]string{"address": "  MG Road, Pune ", "email": "NEW@acme.example"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	require.Equal(t, "MG Road, Pune", body["address"])
	require.Equal(t, "new@acme.example", body["email"])

	w = e.do(http.MethodPatch, "/api/company/profile", token, map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmployeeCRUD(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.activeCompany("acme", "+919876543210")

	w := e.do(http.MethodPost, "/api/company/employees", token, employeeBody("EMP-1", "+919222222222"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = e.do(http.MethodPost, "/api/company/employees", token, employeeBody("EMP-2", "+919222222222"))
	require.Equal(t, http.StatusConflict, w.Code)
	w = e.do(http.MethodPost, "/api/company/employees", token, employeeBody("EMP-1", "+919333333333"))
	require.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodGet, "/api/company/employees", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode(t, w)["total"])

	w = e.do(http.MethodPatch, "/api/company/employees/"+id, token, map[string]string{"designation": "Travel Desk", "status": "disabled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, "Travel Desk", body["designation"])
	require.Equal(t, models.EmployeeDisabled, body["status"])

	w = e.do(http.MethodPatch, "/api/company/employees/"+id, token, map[string]string{"status": "retired"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, "/api/company/employees/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, "/api/company/employees/"+id, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeesAreScopedToTheirCompany(t *testing.T) {
	e := newTestEnv(t)
	_, acme := e.activeCompany("acme", "+919876543210")
	_, globex := e.activeCompany("globex", "+919876543211")

	w := e.do(http.MethodPost, "/api/company/employees", acme, employeeBody("EMP-1", "+919222222222"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	require.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/company/employees/"+id, globex, nil).Code)
	require.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/company/employees/"+id, globex, nil).Code)

	w = e.do(http.MethodGet, "/api/company/employees", globex, nil)
	require.EqualValues(t, 0, decode(t, w)["total"])
}

func TestEmployeeProfileAndRoleChecks(t *testing.T) {
	e := newTestEnv(t)
	co, companyToken := e.activeCompany("acme", "+919876543210")

	w := e.do(http.MethodPost, "/api/company/employees", companyToken, employeeBody("EMP-1", "+919222222222"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)
	empToken := e.token(models.Principal{Subject: id, Role: models.RoleEmployee, CompanyID: co.ID, Name: "Ravi Kumar"})

	w = e.do(http.MethodGet, "/api/employee/profile", empToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, "acme", body["companyName"])
	require.Equal(t, id, body["employee"].(map[string]interface{})["id"])

	require.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/company/employees", empToken, nil).Code)
	require.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/employee/profile", companyToken, nil).Code)
	require.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/companies", companyToken, nil).Code)
}

func TestCompanyWallet(t *testing.T) {
	e := newTestEnv(t)
	co, token := e.activeCompany("acme", "+919876543210")
	e.fund(co.ID, 2500)

	w := e.do(http.MethodGet, "/api/company/wallet", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "2500.00", body["balance"])
	require.Equal(t, "INR", body["currency"])

	w = e.do(http.MethodGet, "/api/company/wallet/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	require.Equal(t, "credit", items[0].(map[string]interface{})["type"])
}
