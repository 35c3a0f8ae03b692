package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
)

// doctorService handles doctor account business logic.
type doctorService struct {
	db *gorm.DB
}

// NewDoctorService creates a new DoctorServicer.
func NewDoctorService(db *gorm.DB) DoctorServicer {
	return &doctorService{db: db}
}

// GetDoctorByEmail retrieves a doctor by email
func (s *doctorService) GetDoctorByEmail(email string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &doctor, nil
}

// GetDoctorByID retrieves a doctor by ID
func (s *doctorService) GetDoctorByID(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &doctor, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *doctorService) VerifyPassword(doctor *models.Doctor, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(password))
	return err == nil
}

// AttemptLogin authenticates a doctor by email and password. Unverified and
// suspended accounts are rejected even with correct credentials. A
// successful login stamps last_login_at.
func (s *doctorService) AttemptLogin(email, password string) (*models.Doctor, error) {
	doctor, err := s.GetDoctorByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrDoctorNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(doctor, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !doctor.Verified {
		return nil, apperrors.ErrAccountNotVerified
	}
	if !doctor.IsActive {
		return nil, apperrors.ErrAccountSuspended
	}

	now := time.Now()
	if err := s.db.Model(doctor).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	doctor.LastLoginAt = &now

	return doctor, nil
}

// StoreRefreshTokenHash persists the hash of the doctor's current refresh token
func (s *doctorService) StoreRefreshTokenHash(doctorID uint, tokenHash string) error {
	result := s.db.Model(&models.Doctor{}).Where("id = ?", doctorID).
		Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrDoctorNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a doctor
func (s *doctorService) GetRefreshTokenHash(doctorID uint) (string, error) {
	doctor, err := s.GetDoctorByID(doctorID)
	if err != nil {
		return "", err
	}
	return doctor.RefreshTokenHash, nil
}

// UpdateProfile updates the doctor's own editable fields. Phone changes are
// checked for uniqueness across other doctors.
func (s *doctorService) UpdateProfile(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error) {
	doctor, err := s.GetDoctorByID(doctorID)
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

// ChangePassword verifies the current password and stores a new bcrypt hash.
func (s *doctorService) ChangePassword(doctorID uint, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "new password must be at least 6 characters")
	}

	doctor, err := s.GetDoctorByID(doctorID)
	if err != nil {
		return err
	}

	if !s.VerifyPassword(doctor, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(doctor).Update("password", string(hashed)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
