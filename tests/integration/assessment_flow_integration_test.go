//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("VITALPATH_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

// TestAssessmentJourneyIntegration walks the whole product loop against a
// running server: a visitor fills the wizard and submits, a staff account
// reviews the assessment, and the visitor's notification reflects the new
// status.
func TestAssessmentJourneyIntegration(t *testing.T) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Timeout: 5 * time.Second, Jar: jar}
	base := baseURL()

	submitterEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())

	var wizard struct {
		WizardID string  `json:"wizard_id"`
		Step     int     `json:"step"`
		Progress float64 `json:"progress"`
	}
	doPost(t, client, base+"/api/wizard", "", nil, &wizard)
	if wizard.WizardID == "" || wizard.Step != 1 {
		t.Fatalf("unexpected wizard create response: %+v", wizard)
	}

	fields := map[string]string{
		"name":   "Integration Tester",
		"email":  submitterEmail,
		"height": "180",
		"weight": "80",
	}
	for name, value := range fields {
		doPost(t, client, base+"/api/wizard/"+wizard.WizardID+"/fields", "",
			map[string]string{"name": name, "value": value}, nil)
	}

	var bmi struct {
		OK  bool    `json:"ok"`
		BMI float64 `json:"bmi"`
	}
	doGet(t, client, base+"/api/wizard/"+wizard.WizardID+"/bmi", "", &bmi)
	if !bmi.OK || bmi.BMI != 24.7 {
		t.Fatalf("bmi = %+v", bmi)
	}

	for i := 0; i < 5; i++ {
		doPost(t, client, base+"/api/wizard/"+wizard.WizardID+"/next", "", nil, nil)
	}

	var submitResp struct {
		AssessmentID string `json:"assessment_id"`
	}
	doPost(t, client, base+"/api/wizard/"+wizard.WizardID+"/submit", "", nil, &submitResp)
	if submitResp.AssessmentID == "" {
		t.Fatalf("submit did not return assessment id")
	}

	var notification struct {
		Visible  bool   `json:"visible"`
		Severity string `json:"severity"`
	}
	doGet(t, client, base+"/api/notifications", "", &notification)
	if !notification.Visible || notification.Severity != "info" {
		t.Fatalf("post-submit notification = %+v", notification)
	}

	staffEmail := fmt.Sprintf("staff_%d@vitalpath.fit", time.Now().UnixNano())
	var registerResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]string{
		"email":    staffEmail,
		"password": "Secret123!",
		"name":     "Integration Staff",
	}, &registerResp)
	if registerResp.Token == "" {
		t.Fatalf("register did not return token")
	}
	token := registerResp.Token

	doPost(t, client, base+"/api/admin/assessments/"+submitResp.AssessmentID+"/status", token,
		map[string]string{"status": "reviewed"}, nil)

	var assessment struct {
		Status string `json:"status"`
	}
	doGet(t, client, base+"/api/assessments/"+submitResp.AssessmentID, "", &assessment)
	if assessment.Status != "reviewed" {
		t.Fatalf("status after review = %q", assessment.Status)
	}

	exportURL := base + "/api/admin/export?format=csv"
	req, err := http.NewRequest(http.MethodGet, exportURL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("export status %d body %s", resp.StatusCode, string(body))
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	if !strings.Contains(string(csvData), submitResp.AssessmentID) {
		t.Fatalf("export csv did not contain assessment id; csv=%s", string(csvData))
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http get %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
