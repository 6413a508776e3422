package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientFlow(t *testing.T) {
	name := uniqueName("Flow Patient")
	email := fmt.Sprintf("flow_patient_%d@example.com", time.Now().UnixNano())

	createResp := makeRequest("POST", "/patients", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      name,
		"email":     email,
		"phone":     "+34611111111",
		"priority":  "high",
	})
	require.True(t, createResp.IsSuccess(), "failed to create patient: %s", createResp.RawData)
	id := createResp.GetString("id")
	require.NotEmpty(t, id)
	assert.Equal(t, "high", createResp.GetString("priority"))
	assert.Equal(t, "active", createResp.GetString("status"))

	getResp := makeRequest("GET", "/patients/"+id, nil)
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, name, getResp.GetString("name"))

	listResp := makeRequest("GET", fmt.Sprintf("/patients?clinic_id=%s&search=%s", clinicID, name), nil)
	require.True(t, listResp.IsSuccess())
	assert.NotEmpty(t, listResp.List)

	newPhone := "+34622222222"
	updateResp := makeRequest("PUT", "/patients/"+id, map[string]interface{}{
		"phone":    newPhone,
		"priority": "urgent",
	})
	require.True(t, updateResp.IsSuccess(), "failed to update patient: %s", updateResp.RawData)
	assert.Equal(t, newPhone, updateResp.GetString("phone"))
	assert.Equal(t, "urgent", updateResp.GetString("priority"))

	deleteResp := makeRequest("DELETE", "/patients/"+id, nil)
	require.True(t, deleteResp.IsSuccess(), "failed to delete patient: %s", deleteResp.RawData)

	verifyResp := makeRequest("GET", "/patients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, verifyResp.StatusCode)
}

func TestPatientValidation(t *testing.T) {
	// Invalid priority fails binding.
	resp := makeRequest("POST", "/patients", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      uniqueName("Bad Priority"),
		"email":     fmt.Sprintf("bad_%d@example.com", time.Now().UnixNano()),
		"priority":  "extreme",
	})
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed email fails binding.
	resp = makeRequest("POST", "/patients", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      uniqueName("Bad Email"),
		"email":     "not-an-email",
	})
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
