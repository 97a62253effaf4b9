package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"leavedesk/internal/app/server"
	"leavedesk/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		Environment:       "test",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		EmailFrom:         "no-reply@test.local",
		RunMigrations:     true,
		RunSeed:           true,
		MigrationsDir:     "../../../../migrations",
		MaxBodyBytes:      1048576,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response from %s: %v", url, err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d (error %+v)", method, url, want, resp.StatusCode, env.Error)
	}
	return env
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, want)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, http.StatusOK)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func dataID(t *testing.T, env envelope) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode id payload: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected id in response")
	}
	return id
}

func leaveTypeIDs(t *testing.T, client *http.Client, baseURL, token string) map[string]string {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/leave/types", token)
	var types []map[string]any
	if err := json.Unmarshal(resp.Data, &types); err != nil {
		t.Fatalf("failed to decode leave types: %v", err)
	}
	byCode := map[string]string{}
	for _, lt := range types {
		code, _ := lt["code"].(string)
		id, _ := lt["id"].(string)
		byCode[code] = id
	}
	return byCode
}

func standardFormatID(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/admin/formats", token)
	var formats []map[string]any
	if err := json.Unmarshal(resp.Data, &formats); err != nil {
		t.Fatalf("failed to decode formats: %v", err)
	}
	for _, f := range formats {
		if name, _ := f["name"].(string); name == "Standard" {
			id, _ := f["id"].(string)
			return id
		}
	}
	t.Fatal("expected seeded Standard format")
	return ""
}

func balanceFor(t *testing.T, client *http.Client, baseURL, token, code string) (float64, float64) {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/leave/balances", token)
	var balances []map[string]any
	if err := json.Unmarshal(resp.Data, &balances); err != nil {
		t.Fatalf("failed to decode balances: %v", err)
	}
	for _, b := range balances {
		if c, _ := b["leaveTypeCode"].(string); c == code {
			total, _ := b["totalLeaves"].(float64)
			pending, _ := b["pendingLeaves"].(float64)
			return total, pending
		}
	}
	t.Fatalf("no balance for %s", code)
	return 0, 0
}

func createEmployee(t *testing.T, client *http.Client, baseURL, adminToken, email, password, formatID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/admin/employees", adminToken, map[string]any{
		"firstName":   "Journey",
		"lastName":    "Tester",
		"email":       email,
		"password":    password,
		"role":        "employee",
		"formatId":    formatID,
		"joiningDate": "2026-04-10",
	}, http.StatusCreated)
	return dataID(t, resp)
}

func TestLeaveApplicationLifecycle(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	formatID := standardFormatID(t, client, ts.URL, adminToken)
	types := leaveTypeIDs(t, client, ts.URL, adminToken)

	email := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	password := "Employee123!"
	createEmployee(t, client, ts.URL, adminToken, email, password, formatID)
	employeeToken := login(t, client, ts.URL, email, password)

	// Standard format grants 2 CL per quarter; joining in Q1 credits
	// the full fiscal year.
	total, pending := balanceFor(t, client, ts.URL, employeeToken, "CL")
	if total != 8 || pending != 0 {
		t.Fatalf("expected CL 8/0 after onboarding, got %v/%v", total, pending)
	}

	createResp := postJSON(t, client, ts.URL+"/api/v1/leave/applications", employeeToken, map[string]any{
		"subject": "Family function",
		"reason":  "Out of town",
		"leaves": []map[string]any{{
			"leaveTypeId": types["CL"],
			"dates": []map[string]any{
				{"date": "2026-05-04", "type": "fullday"},
				{"date": "2026-05-05", "type": "fullday"},
				{"date": "2026-05-06", "type": "fullday"},
			},
		}},
	}, http.StatusCreated)
	applicationID := dataID(t, createResp)

	total, pending = balanceFor(t, client, ts.URL, employeeToken, "CL")
	if total != 8 || pending != 3 {
		t.Fatalf("expected CL 8/3 after submission, got %v/%v", total, pending)
	}

	adjudicate := map[string]any{
		"approved":  true,
		"hrComment": "Enjoy, last day declined",
		"leaveApplicationDetails": []map[string]any{{
			"leaveTypeId": types["CL"],
			"dates": []map[string]any{
				{"date": "2026-05-04", "status": "approved"},
				{"date": "2026-05-05", "status": "approved"},
				{"date": "2026-05-06", "status": "rejected"},
			},
		}},
	}
	postJSON(t, client, ts.URL+"/api/v1/admin/leave/applications/"+applicationID+"/adjudicate", adminToken, adjudicate, http.StatusOK)

	// Approved days consume entitlement; rejected days are released
	// without being spent.
	total, pending = balanceFor(t, client, ts.URL, employeeToken, "CL")
	if total != 6 || pending != 0 {
		t.Fatalf("expected CL 6/0 after approval, got %v/%v", total, pending)
	}

	postJSON(t, client, ts.URL+"/api/v1/admin/leave/applications/"+applicationID+"/adjudicate", adminToken, adjudicate, http.StatusConflict)

	// HR can top an individual balance up directly.
	profile := getJSON(t, client, ts.URL+"/api/v1/profile", employeeToken)
	var me struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(profile.Data, &me); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	postJSON(t, client, ts.URL+"/api/v1/admin/leave/balances/"+me.ID, adminToken, map[string]any{
		"leaveTypeId": types["CL"],
		"days":        2,
	}, http.StatusOK)

	total, _ = balanceFor(t, client, ts.URL, employeeToken, "CL")
	if total != 8 {
		t.Fatalf("expected CL total 8 after grant, got %v", total)
	}

	report := getJSON(t, client, ts.URL+"/api/v1/admin/reports/balances", adminToken)
	var lines []map[string]any
	if err := json.Unmarshal(report.Data, &lines); err != nil {
		t.Fatalf("failed to decode balances report: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("expected balance report lines")
	}
}

func TestLeaveCancelCreditsBackOnce(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	formatID := standardFormatID(t, client, ts.URL, adminToken)
	types := leaveTypeIDs(t, client, ts.URL, adminToken)

	email := fmt.Sprintf("cancel-%d@example.com", time.Now().UnixNano())
	password := "Employee123!"
	createEmployee(t, client, ts.URL, adminToken, email, password, formatID)
	employeeToken := login(t, client, ts.URL, email, password)

	createResp := postJSON(t, client, ts.URL+"/api/v1/leave/applications", employeeToken, map[string]any{
		"subject": "Errand",
		"leaves": []map[string]any{{
			"leaveTypeId": types["CL"],
			"dates":       []map[string]any{{"date": "2026-06-01", "type": "fullday"}},
		}},
	}, http.StatusCreated)
	applicationID := dataID(t, createResp)

	postJSON(t, client, ts.URL+"/api/v1/leave/applications/"+applicationID+"/cancel", employeeToken, nil, http.StatusOK)

	total, _ := balanceFor(t, client, ts.URL, employeeToken, "CL")
	if total != 9 {
		t.Fatalf("expected CL total 9 after credit-back, got %v", total)
	}

	postJSON(t, client, ts.URL+"/api/v1/leave/applications/"+applicationID+"/cancel", employeeToken, nil, http.StatusConflict)

	// A second cancel must not double-credit.
	total, _ = balanceFor(t, client, ts.URL, employeeToken, "CL")
	if total != 9 {
		t.Fatalf("expected CL total still 9, got %v", total)
	}
}

func TestAdjudicateWithModifyReclassifiesDays(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	formatID := standardFormatID(t, client, ts.URL, adminToken)
	types := leaveTypeIDs(t, client, ts.URL, adminToken)

	email := fmt.Sprintf("modify-%d@example.com", time.Now().UnixNano())
	password := "Employee123!"
	createEmployee(t, client, ts.URL, adminToken, email, password, formatID)
	employeeToken := login(t, client, ts.URL, email, password)

	createResp := postJSON(t, client, ts.URL+"/api/v1/leave/applications", employeeToken, map[string]any{
		"subject": "Remote week",
		"leaves": []map[string]any{{
			"leaveTypeId": types["WFH"],
			"dates": []map[string]any{
				{"date": "2026-05-11", "type": "fullday"},
				{"date": "2026-05-12", "type": "fullday"},
			},
		}},
	}, http.StatusCreated)
	applicationID := dataID(t, createResp)

	postJSON(t, client, ts.URL+"/api/v1/admin/leave/applications/"+applicationID+"/adjudicate", adminToken, map[string]any{
		"approved": true,
		"leaveApplicationDetails": []map[string]any{{
			"leaveTypeId": types["WFH"],
			"dates": []map[string]any{
				{"date": "2026-05-11", "status": "approved"},
				{"date": "2026-05-12", "status": "approved"},
			},
		}},
		"modify": []map[string]any{{
			"leaveTypeId":       types["WFH"],
			"modifyLeaveTypeId": types["CL"],
			"leaveDays":         2,
			"modifyDays":        1,
		}},
	}, http.StatusOK)

	// The two WFH days were reclassified: WFH spends nothing, CL
	// spends one day. Pending is only released by what the reconciled
	// row reviewed, so the zeroed source row keeps its reservation.
	wfhTotal, wfhPending := balanceFor(t, client, ts.URL, employeeToken, "WFH")
	if wfhTotal != 12 || wfhPending != 2 {
		t.Fatalf("expected WFH 12/2 after modify, got %v/%v", wfhTotal, wfhPending)
	}
	clTotal, _ := balanceFor(t, client, ts.URL, employeeToken, "CL")
	if clTotal != 7 {
		t.Fatalf("expected CL total 7 after modify, got %v", clTotal)
	}
}

func TestWFHLifecycle(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	formatID := standardFormatID(t, client, ts.URL, adminToken)

	email := fmt.Sprintf("wfh-%d@example.com", time.Now().UnixNano())
	password := "Employee123!"
	createEmployee(t, client, ts.URL, adminToken, email, password, formatID)
	employeeToken := login(t, client, ts.URL, email, password)

	createResp := postJSON(t, client, ts.URL+"/api/v1/leave/wfh", employeeToken, map[string]any{
		"subject": "Plumber visit",
		"dates":   []string{"2026-07-01", "2026-07-02"},
	}, http.StatusCreated)
	applicationID := dataID(t, createResp)

	_, pending := balanceFor(t, client, ts.URL, employeeToken, "WFH")
	if pending != 2 {
		t.Fatalf("expected WFH pending 2, got %v", pending)
	}

	postJSON(t, client, ts.URL+"/api/v1/admin/leave/wfh/"+applicationID+"/approve", adminToken, nil, http.StatusOK)

	total, pending := balanceFor(t, client, ts.URL, employeeToken, "WFH")
	if total != 10 || pending != 0 {
		t.Fatalf("expected WFH 10/0 after approval, got %v/%v", total, pending)
	}

	postJSON(t, client, ts.URL+"/api/v1/admin/leave/wfh/"+applicationID+"/approve", adminToken, nil, http.StatusConflict)

	resp := getJSON(t, client, ts.URL+"/api/v1/leave/wfh", employeeToken)
	var groups []map[string]any
	if err := json.Unmarshal(resp.Data, &groups); err != nil {
		t.Fatalf("failed to decode wfh groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one month group, got %d", len(groups))
	}
	if month, _ := groups[0]["month"].(string); month != "2026-07" {
		t.Fatalf("expected month 2026-07, got %q", month)
	}
}

func TestOrgUniqueConflicts(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	name := fmt.Sprintf("Engineering-%d", time.Now().UnixNano())
	code := fmt.Sprintf("ENG%d", time.Now().UnixNano()%100000)
	payload := map[string]any{"name": name, "code": code}

	postJSON(t, client, ts.URL+"/api/v1/admin/departments", adminToken, payload, http.StatusCreated)
	postJSON(t, client, ts.URL+"/api/v1/admin/departments", adminToken, payload, http.StatusConflict)

	holiday := map[string]any{"name": fmt.Sprintf("Founders Day %d", time.Now().UnixNano()), "date": "2026-08-15", "festive": true}
	postJSON(t, client, ts.URL+"/api/v1/admin/holidays", adminToken, holiday, http.StatusCreated)
	postJSON(t, client, ts.URL+"/api/v1/admin/holidays", adminToken, holiday, http.StatusConflict)
}

func TestEmployeeCannotUseAdminSurface(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	formatID := standardFormatID(t, client, ts.URL, adminToken)

	email := fmt.Sprintf("rbac-%d@example.com", time.Now().UnixNano())
	password := "Employee123!"
	createEmployee(t, client, ts.URL, adminToken, email, password, formatID)
	employeeToken := login(t, client, ts.URL, email, password)

	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/admin/leave/applications", employeeToken, nil, http.StatusForbidden)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/admin/employees", employeeToken, nil, http.StatusForbidden)
}
