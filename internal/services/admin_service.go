package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
)

// adminService handles the super-admin surface: platform stats, clinic
// management, and doctor account management.
type adminService struct {
	db *gorm.DB
}

// NewAdminService creates a new AdminServicer.
func NewAdminService(db *gorm.DB) AdminServicer {
	return &adminService{db: db}
}

// AttemptLogin authenticates a super admin by username and password
func (s *adminService) AttemptLogin(username, password string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.Where("username = ? AND is_active = ?", username, true).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&admin).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	admin.LastLoginAt = &now

	return &admin, nil
}

// GetAdminByID retrieves a super admin by ID
func (s *adminService) GetAdminByID(id uint) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &admin, nil
}

// StoreRefreshTokenHash persists the hash of the admin's current refresh token
func (s *adminService) StoreRefreshTokenHash(adminID uint, tokenHash string) error {
	result := s.db.Model(&models.SuperAdmin{}).Where("id = ?", adminID).
		Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAdminNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for an admin
func (s *adminService) GetRefreshTokenHash(adminID uint) (string, error) {
	admin, err := s.GetAdminByID(adminID)
	if err != nil {
		return "", err
	}
	return admin.RefreshTokenHash, nil
}

// GetPlatformOverview aggregates platform counts for the admin dashboard
func (s *adminService) GetPlatformOverview() (*PlatformOverview, error) {
	overview := &PlatformOverview{BySubscription: make(map[string]int64)}

	counts := []struct {
		dest  *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&overview.TotalClinics, &models.Clinic{}, "", nil},
		{&overview.ActiveClinics, &models.Clinic{}, "is_active = ?", []interface{}{true}},
		{&overview.TotalDoctors, &models.Doctor{}, "", nil},
		{&overview.ActiveDoctors, &models.Doctor{}, "is_active = ?", []interface{}{true}},
		{&overview.TotalPatients, &models.Patient{}, "", nil},
		{&overview.UnassignedDoctor, &models.Doctor{}, "clinic_id IS NULL", nil},
	}
	for _, c := range counts {
		q := s.db.Model(c.model)
		if c.query != "" {
			q = q.Where(c.query, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	type subscriptionCount struct {
		SubscriptionType string
		Count            int64
	}
	var rows []subscriptionCount
	if err := s.db.Model(&models.Clinic{}).
		Select("subscription_type, COUNT(*) as count").
		Group("subscription_type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range rows {
		overview.BySubscription[row.SubscriptionType] = row.Count
	}

	return overview, nil
}

// CreateClinic registers a new clinic
func (s *adminService) CreateClinic(input ClinicInput) (*models.Clinic, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "clinic name is required")
	}
	if input.SubscriptionType == "" {
		input.SubscriptionType = models.SubscriptionBasic
	}
	if input.SubscriptionStart.IsZero() {
		input.SubscriptionStart = time.Now()
	}
	if input.MaxDoctors <= 0 {
		input.MaxDoctors = 1
	}
	if input.MaxPatients <= 0 {
		input.MaxPatients = 100
	}

	clinic := &models.Clinic{
		Name:              input.Name,
		Address:           input.Address,
		Phone:             input.Phone,
		Email:             strings.ToLower(input.Email),
		SubscriptionType:  input.SubscriptionType,
		SubscriptionStart: input.SubscriptionStart,
		SubscriptionEnd:   input.SubscriptionEnd,
		IsActive:          true,
		MaxDoctors:        input.MaxDoctors,
		MaxPatients:       input.MaxPatients,
	}

	if err := s.db.Create(clinic).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return clinic, nil
}

// GetClinics retrieves a paginated list of clinics, optionally filtered by a
// search term matching name or email.
func (s *adminService) GetClinics(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Clinic], error) {
	page.Defaults()

	base := s.db.Model(&models.Clinic{})
	if search != "" {
		pattern := "%" + search + "%"
		base = base.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var clinics []models.Clinic
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&clinics).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(clinics, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetClinicByID retrieves a clinic with its doctors
func (s *adminService) GetClinicByID(clinicID uint) (*models.Clinic, error) {
	var clinic models.Clinic
	if err := s.db.Preload("Doctors").First(&clinic, clinicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClinicNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &clinic, nil
}

// SetClinicActive toggles a clinic's active flag
func (s *adminService) SetClinicActive(clinicID uint, active bool) (*models.Clinic, error) {
	clinic, err := s.GetClinicByID(clinicID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(clinic).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	clinic.IsActive = active
	return clinic, nil
}

// CreateDoctor registers a doctor account. Admin-created doctors are
// verified immediately; there is no separate verification flow for them.
func (s *adminService) CreateDoctor(input DoctorInput) (*models.Doctor, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	if len(input.Password) < 6 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	var count int64
	s.db.Model(&models.Doctor{}).Where("email = ?", strings.ToLower(input.Email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}
	if input.Phone != "" {
		s.db.Model(&models.Doctor{}).Where("phone = ?", input.Phone).Count(&count)
		if count > 0 {
			return nil, apperrors.ErrDuplicatePhone
		}
	}

	if input.ClinicID != nil {
		if err := s.checkClinicCapacity(*input.ClinicID); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	doctor := &models.Doctor{
		ClinicID:  input.ClinicID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     strings.ToLower(input.Email),
		Phone:     input.Phone,
		Password:  string(hashed),
		Verified:  true,
		IsActive:  true,
		Role:      models.DoctorRoleDoctor,
	}

	if err := s.db.Create(doctor).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return doctor, nil
}

// GetDoctors retrieves a paginated list of doctors, optionally filtered by a
// search term matching name or email.
func (s *adminService) GetDoctors(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Doctor], error) {
	page.Defaults()

	base := s.db.Model(&models.Doctor{})
	if search != "" {
		pattern := "%" + search + "%"
		base = base.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var doctors []models.Doctor
	if err := base.Scopes(pagination.Paginate(page)).
		Order("last_name ASC, first_name ASC").
		Find(&doctors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(doctors, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateDoctor edits a doctor's profile fields on their behalf
func (s *adminService) UpdateDoctor(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error) {
	doctor, err := s.getDoctor(doctorID)
	if err != nil {
		return nil, err
	}

	if phone != "" && phone != doctor.Phone {
		var count int64
		s.db.Model(&models.Doctor{}).Where("phone = ? AND id <> ?", phone, doctorID).Count(&count)
		if count > 0 {
			return nil, apperrors.ErrDuplicatePhone
		}
		doctor.Phone = phone
	}
	if firstName != "" {
		doctor.FirstName = firstName
	}
	if lastName != "" {
		doctor.LastName = lastName
	}

	if err := s.db.Save(doctor).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return doctor, nil
}

// SetDoctorActive suspends or reinstates a doctor account
func (s *adminService) SetDoctorActive(doctorID uint, active bool) (*models.Doctor, error) {
	doctor, err := s.getDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(doctor).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	doctor.IsActive = active
	return doctor, nil
}

// ResetDoctorPassword sets a new password for a doctor without requiring the
// old one. Also clears the stored refresh token hash so existing sessions
// cannot renew.
func (s *adminService) ResetDoctorPassword(doctorID uint, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	doctor, err := s.getDoctor(doctorID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(doctor).Updates(map[string]interface{}{
		"password":           string(hashed),
		"refresh_token_hash": "",
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AssignDoctorToClinic moves a doctor to a clinic, or unassigns them when
// clinicID is nil. Assignment is refused when the clinic is at capacity.
func (s *adminService) AssignDoctorToClinic(doctorID uint, clinicID *uint) (*models.Doctor, error) {
	doctor, err := s.getDoctor(doctorID)
	if err != nil {
		return nil, err
	}

	if clinicID != nil {
		if err := s.checkClinicCapacity(*clinicID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(doctor).Update("clinic_id", clinicID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	doctor.ClinicID = clinicID
	return doctor, nil
}

func (s *adminService) getDoctor(doctorID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &doctor, nil
}

func (s *adminService) checkClinicCapacity(clinicID uint) error {
	var clinic models.Clinic
	if err := s.db.First(&clinic, clinicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrClinicNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assigned int64
	s.db.Model(&models.Doctor{}).Where("clinic_id = ?", clinicID).Count(&assigned)
	if assigned >= int64(clinic.MaxDoctors) {
		return apperrors.ErrClinicFull
	}
	return nil
}
