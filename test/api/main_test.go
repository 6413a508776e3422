package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL   = "http://localhost:8080/api/v1"
	clinicID  string
	doctorID  string
	patientID string
)

// APIError mirrors the error envelope of the API.
type APIError struct {
	Code           string                   `json:"code"`
	Message        string                   `json:"message"`
	SuggestedSlots []map[string]interface{} `json:"suggested_slots,omitempty"`
}

// APIResponse represents the API response structure
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

// TestResponse wraps the API response for testing
type TestResponse struct {
	StatusCode int
	Success    bool
	Error      *APIError
	Data       map[string]interface{}
	List       []interface{}
	RawData    string
}

func (r TestResponse) IsSuccess() bool {
	return r.Success
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (r TestResponse) ErrorCode() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

func makeRequest(method, path string, body interface{}) TestResponse {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return TestResponse{RawData: err.Error()}
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return TestResponse{RawData: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return TestResponse{RawData: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return TestResponse{StatusCode: resp.StatusCode, RawData: string(raw)}
	}

	out := TestResponse{
		StatusCode: resp.StatusCode,
		Success:    apiResp.Success,
		Error:      apiResp.Error,
		RawData:    string(raw),
	}

	if len(apiResp.Data) > 0 {
		var obj map[string]interface{}
		if err := json.Unmarshal(apiResp.Data, &obj); err == nil {
			out.Data = obj
		} else {
			var list []interface{}
			if err := json.Unmarshal(apiResp.Data, &list); err == nil {
				out.List = list
			}
		}
	}

	return out
}

func checkAPIServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		return fmt.Errorf("API server not reachable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %d", resp.StatusCode)
	}
	return nil
}

func TestMain(m *testing.M) {
	if err := checkAPIServer(); err != nil {
		fmt.Printf("Skipping API tests: %v\nStart the server at %s to run them.\n", err, baseURL)
		os.Exit(0)
	}

	if err := setupTestData(); err != nil {
		fmt.Printf("Failed to set up test data: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	cleanup()

	os.Exit(code)
}

func setupTestData() error {
	// Clinics are seeded externally; pick the first one.
	resp := makeRequest("GET", "/clinics", nil)
	if !resp.IsSuccess() || len(resp.List) == 0 {
		return fmt.Errorf("no clinics available, run the seed migration first")
	}
	first, ok := resp.List[0].(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected clinic list payload: %s", resp.RawData)
	}
	clinicID, _ = first["id"].(string)
	if clinicID == "" {
		return fmt.Errorf("clinic without ID in: %s", resp.RawData)
	}

	doctorResp := makeRequest("POST", "/doctors", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      uniqueName("Dr. Test"),
		"email":     fmt.Sprintf("doctor_%d@example.com", time.Now().UnixNano()),
		"specialty": "general",
	})
	if !doctorResp.IsSuccess() {
		return fmt.Errorf("failed to create doctor: %s", doctorResp.RawData)
	}
	doctorID = doctorResp.GetString("id")

	patientResp := makeRequest("POST", "/patients", map[string]interface{}{
		"clinic_id": clinicID,
		"name":      uniqueName("Test Patient"),
		"email":     fmt.Sprintf("patient_%d@example.com", time.Now().UnixNano()),
		"phone":     "+34600000000",
	})
	if !patientResp.IsSuccess() {
		return fmt.Errorf("failed to create patient: %s", patientResp.RawData)
	}
	patientID = patientResp.GetString("id")

	return nil
}

func cleanup() {
	if doctorID != "" {
		makeRequest("DELETE", "/doctors/"+doctorID, nil)
		doctorID = ""
	}
	if patientID != "" {
		makeRequest("DELETE", "/patients/"+patientID, nil)
		patientID = ""
	}
}
