package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAdminFlow(t *testing.T) {
	app := setupApp(t)
	admin := app.seedSuperAdmin(t)
	adminToken := app.loginAdmin(t, admin.Username)

	// Step 1: Create a clinic
	body := `{"name":"Riverside Clinic","address":"12 River St","email":"Front@Riverside.com","max_doctors":2}`
	rec := app.request("POST", "/api/v1/admin/clinics", body, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create clinic failed: %d %s", rec.Code, rec.Body.String())
	}
	clinic := parseJSON(t, rec)["clinic"].(map[string]interface{})
	clinicID := clinic["id"].(float64)
	if clinic["email"] != "front@riverside.com" {
		t.Errorf("expected lowercased email, got %v", clinic["email"])
	}
	if clinic["subscription_type"] != "basic" {
		t.Errorf("expected default subscription, got %v", clinic["subscription_type"])
	}

	// Step 2: Create a doctor assigned to the clinic
	body = fmt.Sprintf(`{"first_name":"Grace","last_name":"Hopper","email":"grace@riverside.com","phone":"+15551234567","password":"initialpass","clinic_id":%.0f}`, clinicID)
	rec = app.request("POST", "/api/v1/admin/doctors", body, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create doctor failed: %d %s", rec.Code, rec.Body.String())
	}
	doctor := parseJSON(t, rec)["doctor"].(map[string]interface{})
	doctorID := doctor["id"].(float64)
	if doctor["clinic_id"].(float64) != clinicID {
		t.Errorf("expected clinic assignment %.0f, got %v", clinicID, doctor["clinic_id"])
	}

	// Step 3: The new doctor can log in immediately
	body = `{"email":"grace@riverside.com","password":"initialpass"}`
	rec = app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("doctor login failed: %d %s", rec.Code, rec.Body.String())
	}
	login := parseJSON(t, rec)
	doctorToken := login["access_token"].(string)
	doctorRefresh := login["refresh_token"].(string)

	// Step 4: Doctor tokens are rejected on admin routes
	rec = app.request("GET", "/api/v1/admin/overview", "", doctorToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for doctor on admin route, got %d", rec.Code)
	}

	// Step 5: The admin overview counts the new rows
	rec = app.request("GET", "/api/v1/admin/overview", "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview failed: %d %s", rec.Code, rec.Body.String())
	}
	overview := parseJSON(t, rec)
	if overview["total_clinics"].(float64) != 1 || overview["total_doctors"].(float64) != 1 {
		t.Errorf("unexpected overview counts: %v", overview)
	}
	if overview["unassigned_doctors"].(float64) != 0 {
		t.Errorf("expected 0 unassigned doctors, got %v", overview["unassigned_doctors"])
	}

	// Step 6: Password reset invalidates the doctor's refresh token
	body = `{"new_password":"rotatedpass"}`
	rec = app.request("PUT", fmt.Sprintf("/api/v1/admin/doctors/%.0f/password", doctorID), body, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset password failed: %d %s", rec.Code, rec.Body.String())
	}
	body = fmt.Sprintf(`{"refresh_token":%q}`, doctorRefresh)
	rec = app.request("POST", "/api/v1/auth/refresh", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for pre-reset refresh token, got %d", rec.Code)
	}

	// Step 7: The old password no longer works, the new one does
	body = `{"email":"grace@riverside.com","password":"initialpass"}`
	rec = app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with old password, got %d", rec.Code)
	}
	body = `{"email":"grace@riverside.com","password":"rotatedpass"}`
	rec = app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login with reset password failed: %d %s", rec.Code, rec.Body.String())
	}

	// Step 8: Deactivating the doctor blocks further logins
	body = `{"is_active":false}`
	rec = app.request("PUT", fmt.Sprintf("/api/v1/admin/doctors/%.0f/active", doctorID), body, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate doctor failed: %d %s", rec.Code, rec.Body.String())
	}
	body = `{"email":"grace@riverside.com","password":"rotatedpass"}`
	rec = app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for deactivated doctor, got %d", rec.Code)
	}
}

func TestAdminClinicCapacity(t *testing.T) {
	app := setupApp(t)
	admin := app.seedSuperAdmin(t)
	adminToken := app.loginAdmin(t, admin.Username)

	// Step 1: Clinic with room for one doctor
	body := `{"name":"Small Practice","max_doctors":1}`
	rec := app.request("POST", "/api/v1/admin/clinics", body, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create clinic failed: %d %s", rec.Code, rec.Body.String())
	}
	clinicID := parseJSON(t, rec)["clinic"].(map[string]interface{})["id"].(float64)

	// Step 2: First doctor fills the clinic
	body = fmt.Sprintf(`{"first_name":"Ada","last_name":"Lovelace","email":"ada@small.com","phone":"+15550000001","password":"password123","clinic_id":%.0f}`, clinicID)
	rec = app.request("POST", "/api/v1/admin/doctors", body, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create first doctor failed: %d %s", rec.Code, rec.Body.String())
	}

	// Step 3: Second assignment is refused
	body = fmt.Sprintf(`{"first_name":"Alan","last_name":"Turing","email":"alan@small.com","phone":"+15550000002","password":"password123","clinic_id":%.0f}`, clinicID)
	rec = app.request("POST", "/api/v1/admin/doctors", body, adminToken)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for full clinic, got %d %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "CLINIC_FULL" {
		t.Errorf("expected CLINIC_FULL, got %v", errObj["code"])
	}
}
