package api_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

var slotCounter int64

// Helper function to generate unique names
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// nextSlot hands out bookable times far enough apart that tests never
// collide with each other: one per hour, weekdays only, starting next
// week.
func nextSlot() time.Time {
	n := atomic.AddInt64(&slotCounter, 1) - 1

	now := time.Now().UTC()
	base := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC).AddDate(0, 0, 7)
	for base.Weekday() == time.Saturday || base.Weekday() == time.Sunday {
		base = base.AddDate(0, 0, 1)
	}

	day := base.AddDate(0, 0, int(n/8))
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(time.Duration(n%8) * time.Hour)
}

// Helper to book an appointment for the shared doctor and patient
func bookAppointment(t *testing.T, start time.Time) (string, TestResponse) {
	t.Helper()

	resp := makeRequest("POST", "/appointments", map[string]interface{}{
		"doctor_id":  doctorID,
		"patient_id": patientID,
		"start_time": start.Format(time.RFC3339),
		"reason":     "routine checkup",
	})
	return resp.GetString("id"), resp
}

// Helper to create an extra doctor when a test needs its own calendar
func createTestDoctor(t *testing.T) string {
	t.Helper()

	resp := makeRequest("POST", "/doctors", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      uniqueName("Dr. Extra"),
		"email":     fmt.Sprintf("extra_%d@example.com", time.Now().UnixNano()),
		"specialty": "general",
	})
	if !resp.IsSuccess() {
		t.Fatalf("Failed to create test doctor: %s", resp.RawData)
	}
	return resp.GetString("id")
}
