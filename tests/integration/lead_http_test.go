//go:build integration

package integration

import (
	"net/http"
	"testing"

	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/interfaces/http/dto"
	"github.com/autodealer/backend/internal/interfaces/http/handler"
	"github.com/autodealer/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLeadHTTP_PublicStatusAndClaim(t *testing.T) {
	f := newWorkflowFixture(t)
	h := handler.NewLeadHandler(f.leads)

	managerID := f.db.CreateStaff("aigerim@dealer.example", "Aigerim", identity.RoleManager)
	manager := identity.NewActor(managerID, identity.RoleManager)
	car := f.db.CreateCar("Toyota", "Camry", 15000000)
	lead := f.db.CreateLead("Dana", "+77015550000", &car.ID)
	leadParam := gin.Params{{Key: "id", Value: lead.ID.String()}}

	testutil.RunHTTPTestCases(t, h.GetLeadStatus, []testutil.HTTPTestCase{
		{
			Name:           "malformed token",
			Path:           "/lead-status?token=abc",
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   dto.ErrCodeNotFound,
		},
		{
			Name:           "valid token hides contact details",
			Path:           "/lead-status?token=" + lead.TrackingToken,
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				body := testutil.JSONResponse(t, tc)
				data, _ := body["data"].(map[string]any)
				assert.Equal(t, "Dana", data["customer_name"])
				assert.Equal(t, string(crm.LeadStatusNew), data["status"])
				assert.NotContains(t, data, "customer_phone")
				assert.Nil(t, data["manager"])
			},
		},
	})

	testutil.RunHTTPTestCases(t, h.ClaimLead, []testutil.HTTPTestCase{
		{
			Name:           "manager claims",
			Method:         http.MethodPost,
			Params:         leadParam,
			Actor:          &manager,
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				resp := testutil.DataAs[appcrm.LeadResponse](t, tc)
				assert.Equal(t, crm.LeadStatusContacted, resp.Status)
				if assert.NotNil(t, resp.AssignedManagerID) {
					assert.Equal(t, managerID, *resp.AssignedManagerID)
				}
			},
		},
		{
			Name:           "second claim loses",
			Method:         http.MethodPost,
			Params:         leadParam,
			Actor:          &manager,
			ExpectedStatus: http.StatusConflict,
			ExpectedCode:   dto.ErrCodeLeadAlreadyClaimed,
		},
	})

	testutil.RunHTTPTestCase(t, h.GetLeadStatus, testutil.HTTPTestCase{
		Name:           "status shows the manager after the claim",
		Path:           "/lead-status?token=" + lead.TrackingToken,
		ExpectedStatus: http.StatusOK,
		Validate: func(t *testing.T, tc *testutil.TestContext) {
			resp := testutil.DataAs[appcrm.LeadStatusResponse](t, tc)
			assert.Equal(t, crm.LeadStatusContacted, resp.Status)
			if assert.NotNil(t, resp.Manager) {
				assert.Equal(t, "Aigerim", resp.Manager.FullName)
			}
		},
	})
}
