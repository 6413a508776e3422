package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorFlow(t *testing.T) {
	name := uniqueName("Dr. Flow")
	email := fmt.Sprintf("flow_%d@example.com", time.Now().UnixNano())

	createResp := makeRequest("POST", "/doctors", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      name,
		"email":     email,
		"specialty": "cardiology",
	})
	require.True(t, createResp.IsSuccess(), "failed to create doctor: %s", createResp.RawData)
	id := createResp.GetString("id")
	require.NotEmpty(t, id)
	assert.Equal(t, true, createResp.Data["active"])

	getResp := makeRequest("GET", "/doctors/"+id, nil)
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, name, getResp.GetString("name"))
	assert.Equal(t, "cardiology", getResp.GetString("specialty"))

	listResp := makeRequest("GET", "/doctors?clinic_id="+clinicID, nil)
	require.True(t, listResp.IsSuccess())
	assert.NotEmpty(t, listResp.List)

	newSpecialty := "dermatology"
	updateResp := makeRequest("PUT", "/doctors/"+id, map[string]interface{}{
		"specialty": newSpecialty,
	})
	require.True(t, updateResp.IsSuccess(), "failed to update doctor: %s", updateResp.RawData)
	assert.Equal(t, newSpecialty, updateResp.GetString("specialty"))

	deleteResp := makeRequest("DELETE", "/doctors/"+id, nil)
	require.True(t, deleteResp.IsSuccess(), "failed to delete doctor: %s", deleteResp.RawData)

	verifyResp := makeRequest("GET", "/doctors/"+id, nil)
	assert.Equal(t, http.StatusNotFound, verifyResp.StatusCode)
}

func TestInactiveDoctorRejectsBookings(t *testing.T) {
	id := createTestDoctor(t)

	updateResp := makeRequest("PUT", "/doctors/"+id, map[string]interface{}{
		"active": false,
	})
	require.True(t, updateResp.IsSuccess(), "failed to deactivate: %s", updateResp.RawData)

	bookResp := makeRequest("POST", "/appointments", map[string]interface{}{
		"doctor_id":  id,
		"patient_id": patientID,
		"start_time": nextSlot().Format(time.RFC3339),
		"reason":     "should be refused",
	})
	assert.False(t, bookResp.IsSuccess())
	assert.Equal(t, http.StatusBadRequest, bookResp.StatusCode)
}

func TestDoctorStats(t *testing.T) {
	statsDoctorID := createTestDoctor(t)

	bookResp := makeRequest("POST", "/appointments", map[string]interface{}{
		"doctor_id":  statsDoctorID,
		"patient_id": patientID,
		"start_time": nextSlot().Format(time.RFC3339),
		"reason":     "counts toward stats",
	})
	require.True(t, bookResp.IsSuccess(), "failed to book: %s", bookResp.RawData)

	statsResp := makeRequest("GET", "/doctors/"+statsDoctorID+"/stats", nil)
	require.True(t, statsResp.IsSuccess(), "stats failed: %s", statsResp.RawData)

	assert.Equal(t, float64(1), statsResp.Data["total_appointments"])
	assert.Equal(t, float64(1), statsResp.Data["total_patients"])
	assert.NotEmpty(t, statsResp.Data["upcoming_appointments"])
	assert.NotEmpty(t, statsResp.Data["generated_at"])
}
