package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
	"clinicore/internal/services"
	"clinicore/internal/validator"
)

// --- mock services ---

type mockDoctorService struct {
	getDoctorByEmailFn      func(email string) (*models.Doctor, error)
	getDoctorByIDFn         func(id uint) (*models.Doctor, error)
	verifyPasswordFn        func(doctor *models.Doctor, password string) bool
	attemptLoginFn          func(email, password string) (*models.Doctor, error)
	storeRefreshTokenHashFn func(doctorID uint, tokenHash string) error
	getRefreshTokenHashFn   func(doctorID uint) (string, error)
	updateProfileFn         func(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error)
	changePasswordFn        func(doctorID uint, currentPassword, newPassword string) error
}

func (m *mockDoctorService) GetDoctorByEmail(email string) (*models.Doctor, error) {
	if m.getDoctorByEmailFn != nil {
		return m.getDoctorByEmailFn(email)
	}
	return &models.Doctor{}, nil
}

func (m *mockDoctorService) GetDoctorByID(id uint) (*models.Doctor, error) {
	if m.getDoctorByIDFn != nil {
		return m.getDoctorByIDFn(id)
	}
	return &models.Doctor{}, nil
}

func (m *mockDoctorService) VerifyPassword(doctor *models.Doctor, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(doctor, password)
	}
	return true
}

func (m *mockDoctorService) AttemptLogin(email, password string) (*models.Doctor, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.Doctor{}, nil
}

func (m *mockDoctorService) StoreRefreshTokenHash(doctorID uint, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(doctorID, tokenHash)
	}
	return nil
}

func (m *mockDoctorService) GetRefreshTokenHash(doctorID uint) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(doctorID)
	}
	return "", nil
}

func (m *mockDoctorService) UpdateProfile(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(doctorID, firstName, lastName, phone)
	}
	return &models.Doctor{}, nil
}

func (m *mockDoctorService) ChangePassword(doctorID uint, currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(doctorID, currentPassword, newPassword)
	}
	return nil
}

var _ services.DoctorServicer = (*mockDoctorService)(nil)

type mockAdminService struct {
	getRefreshTokenHashFn   func(adminID uint) (string, error)
	storeRefreshTokenHashFn func(adminID uint, tokenHash string) error
}

func (m *mockAdminService) AttemptLogin(username, password string) (*models.SuperAdmin, error) {
	return &models.SuperAdmin{}, nil
}

func (m *mockAdminService) GetAdminByID(id uint) (*models.SuperAdmin, error) {
	return &models.SuperAdmin{}, nil
}

func (m *mockAdminService) StoreRefreshTokenHash(adminID uint, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(adminID, tokenHash)
	}
	return nil
}

func (m *mockAdminService) GetRefreshTokenHash(adminID uint) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(adminID)
	}
	return "", nil
}

func (m *mockAdminService) GetPlatformOverview() (*services.PlatformOverview, error) {
	return &services.PlatformOverview{}, nil
}

func (m *mockAdminService) CreateClinic(input services.ClinicInput) (*models.Clinic, error) {
	return &models.Clinic{}, nil
}

func (m *mockAdminService) GetClinics(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Clinic], error) {
	resp := pagination.NewPageResponse([]models.Clinic{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) GetClinicByID(clinicID uint) (*models.Clinic, error) {
	return &models.Clinic{}, nil
}

func (m *mockAdminService) SetClinicActive(clinicID uint, active bool) (*models.Clinic, error) {
	return &models.Clinic{}, nil
}

func (m *mockAdminService) CreateDoctor(input services.DoctorInput) (*models.Doctor, error) {
	return &models.Doctor{}, nil
}

func (m *mockAdminService) GetDoctors(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Doctor], error) {
	resp := pagination.NewPageResponse([]models.Doctor{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAdminService) UpdateDoctor(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error) {
	return &models.Doctor{}, nil
}

func (m *mockAdminService) SetDoctorActive(doctorID uint, active bool) (*models.Doctor, error) {
	return &models.Doctor{}, nil
}

func (m *mockAdminService) ResetDoctorPassword(doctorID uint, newPassword string) error {
	return nil
}

func (m *mockAdminService) AssignDoctorToClinic(doctorID uint, clinicID *uint) (*models.Doctor, error) {
	return &models.Doctor{}, nil
}

var _ services.AdminServicer = (*mockAdminService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.GET("/profile", injectDoctorID(1), handler.GetProfile)
	r.PUT("/profile", injectDoctorID(1), handler.UpdateProfile)
	r.PUT("/profile/password", injectDoctorID(1), handler.ChangePassword)
	return r
}

func injectDoctorID(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("accountID", id)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token pair", func(t *testing.T) {
		var storedHash string
		doctorSvc := &mockDoctorService{
			attemptLoginFn: func(email, _ string) (*models.Doctor, error) {
				return &models.Doctor{
					Base:      models.Base{ID: 1},
					Email:     email,
					FirstName: "Jane",
					LastName:  "Doe",
					Role:      models.DoctorRoleDoctor,
				}, nil
			},
			storeRefreshTokenHashFn: func(_ uint, tokenHash string) error {
				storedHash = tokenHash
				return nil
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login",
			`{"email":"jane@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == "" || result["refresh_token"] == "" {
			t.Error("expected token pair in response")
		}
		refresh := result["refresh_token"].(string)
		if storedHash != middleware.HashToken(refresh) {
			t.Error("expected stored hash to match issued refresh token")
		}
		doctor := result["doctor"].(map[string]interface{})
		if doctor["email"] != "jane@example.com" {
			t.Errorf("unexpected doctor payload: %v", doctor)
		}
	})

	t.Run("returns 400 on malformed email", func(t *testing.T) {
		handler := NewAuthHandler(&mockDoctorService{}, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login",
			`{"email":"not-an-email","password":"password123"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		doctorSvc := &mockDoctorService{
			attemptLoginFn: func(_, _ string) (*models.Doctor, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login",
			`{"email":"jane@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 403 on suspended account", func(t *testing.T) {
		doctorSvc := &mockDoctorService{
			attemptLoginFn: func(_, _ string) (*models.Doctor, error) {
				return nil, apperrors.ErrAccountSuspended
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/login",
			`{"email":"jane@example.com","password":"password123"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_SUSPENDED")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		refresh, err := middleware.GenerateRefreshToken(1, "jane@example.com", "doctor")
		if err != nil {
			t.Fatalf("failed to generate refresh token: %v", err)
		}

		var newHash string
		doctorSvc := &mockDoctorService{
			getRefreshTokenHashFn: func(_ uint) (string, error) {
				return middleware.HashToken(refresh), nil
			},
			storeRefreshTokenHashFn: func(_ uint, tokenHash string) error {
				newHash = tokenHash
				return nil
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh",
			`{"refresh_token":"`+refresh+`"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == "" || result["refresh_token"] == "" {
			t.Error("expected new token pair")
		}
		if newHash != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected rotated hash to be stored")
		}
	})

	t.Run("rejects a superseded refresh token", func(t *testing.T) {
		refresh, err := middleware.GenerateRefreshToken(1, "jane@example.com", "doctor")
		if err != nil {
			t.Fatalf("failed to generate refresh token: %v", err)
		}

		doctorSvc := &mockDoctorService{
			getRefreshTokenHashFn: func(_ uint) (string, error) {
				return "hash-of-a-newer-token", nil
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh",
			`{"refresh_token":"`+refresh+`"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects an access token", func(t *testing.T) {
		access, err := middleware.GenerateAccessToken(1, "jane@example.com", "doctor")
		if err != nil {
			t.Fatalf("failed to generate access token: %v", err)
		}

		handler := NewAuthHandler(&mockDoctorService{}, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh",
			`{"refresh_token":"`+access+`"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns 200 with doctor", func(t *testing.T) {
		doctorSvc := &mockDoctorService{
			getDoctorByIDFn: func(id uint) (*models.Doctor, error) {
				return &models.Doctor{
					Base:      models.Base{ID: id},
					Email:     "jane@example.com",
					FirstName: "Jane",
				}, nil
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		doctor := result["doctor"].(map[string]interface{})
		if doctor["first_name"] != "Jane" {
			t.Errorf("unexpected doctor payload: %v", doctor)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewAuthHandler(&mockDoctorService{}, &mockAdminService{})
		r := gin.New()
		r.GET("/profile", handler.GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewAuthHandler(&mockDoctorService{}, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "PUT", "/profile/password",
			`{"current_password":"password123","new_password":"newpassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on short new password", func(t *testing.T) {
		handler := NewAuthHandler(&mockDoctorService{}, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "PUT", "/profile/password",
			`{"current_password":"password123","new_password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 401 on wrong current password", func(t *testing.T) {
		doctorSvc := &mockDoctorService{
			changePasswordFn: func(_ uint, _, _ string) error {
				return apperrors.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(doctorSvc, &mockAdminService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "PUT", "/profile/password",
			`{"current_password":"wrong","new_password":"newpassword"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
