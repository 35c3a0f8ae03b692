package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/services"
)

// AuthHandler handles doctor authentication and profile requests
type AuthHandler struct {
	doctorService services.DoctorServicer
	adminService  services.AdminServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(doctorService services.DoctorServicer, adminService services.AdminServicer) *AuthHandler {
	return &AuthHandler{doctorService: doctorService, adminService: adminService}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=30"`
}

// ChangePasswordRequest represents the password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
}

// DoctorResponse represents the doctor data in the response
type DoctorResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	ClinicID  *uint  `json:"clinic_id,omitempty"`
}

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Doctor       DoctorResponse `json:"doctor"`
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func doctorJSON(doctor *models.Doctor) gin.H {
	return gin.H{
		"id":         doctor.ID,
		"email":      doctor.Email,
		"first_name": doctor.FirstName,
		"last_name":  doctor.LastName,
		"phone":      doctor.Phone,
		"clinic_id":  doctor.ClinicID,
	}
}

func (h *AuthHandler) issueTokens(doctorID uint, email, role string) (string, string, error) {
	access, err := middleware.GenerateAccessToken(doctorID, email, role)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refresh, err := middleware.GenerateRefreshToken(doctorID, email, role)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return access, refresh, nil
}

// Login handles doctor login
// @Summary     Login doctor
// @Description Authenticate a doctor and get access and refresh tokens
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Doctor login credentials"
// @Success     200 {object} AuthResponse "Doctor authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     403 {object} ErrorResponse "Account not verified or suspended"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doctor, err := h.doctorService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	access, refresh, err := h.issueTokens(doctor.ID, doctor.Email, string(doctor.Role))
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.doctorService.StoreRefreshTokenHash(doctor.ID, middleware.HashToken(refresh)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"doctor":        doctorJSON(doctor),
	})
}

// Refresh exchanges a valid refresh token for a new token pair
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new access and refresh token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or revoked refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	var storedHash string
	if claims.Role == middleware.RoleSuperAdmin {
		storedHash, err = h.adminService.GetRefreshTokenHash(claims.AccountID)
	} else {
		storedHash, err = h.doctorService.GetRefreshTokenHash(claims.AccountID)
	}
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	// Rotation: only the most recently issued refresh token is accepted
	if storedHash == "" || storedHash != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	access, refresh, err := h.issueTokens(claims.AccountID, claims.Email, claims.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if claims.Role == middleware.RoleSuperAdmin {
		err = h.adminService.StoreRefreshTokenHash(claims.AccountID, middleware.HashToken(refresh))
	} else {
		err = h.doctorService.StoreRefreshTokenHash(claims.AccountID, middleware.HashToken(refresh))
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// GetProfile returns the doctor's profile
// @Summary     Get doctor profile
// @Description Get the authenticated doctor's profile information
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DoctorResponse "Doctor profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	doctor, err := h.doctorService.GetDoctorByID(doctorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctor": doctorJSON(doctor)})
}

// UpdateProfile updates the doctor's own profile
// @Summary     Update doctor profile
// @Description Update the authenticated doctor's name and phone
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} DoctorResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Phone already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doctor, err := h.doctorService.UpdateProfile(doctorID, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctor": doctorJSON(doctor)})
}

// ChangePassword changes the doctor's password
// @Summary     Change password
// @Description Change the authenticated doctor's password
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChangePasswordRequest true "Current and new password"
// @Success     200 {object} map[string]string "Password changed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Wrong current password"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.doctorService.ChangePassword(doctorID, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
