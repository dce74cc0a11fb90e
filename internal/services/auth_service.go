// internal/services/auth_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/config"
	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

// resendInterval is the minimum gap between two codes for the same
// (email, purpose) pair.
const resendInterval = 60 * time.Second

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer Mailer
}

type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=50"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	Role     models.UserRole `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendOTPRequest struct {
	Email   string            `json:"email" validate:"required,email"`
	Purpose models.OTPPurpose `json:"purpose" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name    string   `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar  string   `json:"avatar,omitempty" validate:"omitempty,url"`
	Bio     string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	College string   `json:"college,omitempty" validate:"omitempty,max=100"`
	Skills  []string `json:"skills,omitempty" validate:"omitempty,max=20"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

// OTPPendingResponse is returned by flows that park on email verification.
type OTPPendingResponse struct {
	Email     string            `json:"email"`
	Purpose   models.OTPPurpose `json:"purpose"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		mailer: mailer,
	}
}

// Register starts the two-step signup: the user row is not created until the
// emailed code is verified. The pending profile (with the password already
// hashed) rides on the OTP record.
func (s *AuthService) Register(req *RegisterRequest) (*OTPPendingResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleBoth
	}
	if role != models.RoleBuyer && role != models.RoleSeller && role != models.RoleBoth {
		return nil, ValidationError("invalid role")
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, ConflictError("user with this email already exists")
	}

	tmp := models.User{}
	if err := tmp.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp, code, err := s.issueOTP(req.Email, models.OTPPurposeRegister, models.JSONB{
		"name":          req.Name,
		"password_hash": tmp.PasswordHash,
		"role":          string(role),
	})
	if err != nil {
		return nil, err
	}

	s.sendOTP(req.Email, code, models.OTPPurposeRegister)

	return &OTPPendingResponse{
		Email:     req.Email,
		Purpose:   models.OTPPurposeRegister,
		ExpiresAt: otp.ExpiresAt,
	}, nil
}

// VerifyRegistration consumes the register code and creates the user.
func (s *AuthService) VerifyRegistration(req *VerifyOTPRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	otp, err := s.consumeOTP(req.Email, req.Code, models.OTPPurposeRegister)
	if err != nil {
		return nil, err
	}

	name, _ := otp.UserData["name"].(string)
	passwordHash, _ := otp.UserData["password_hash"].(string)
	roleStr, _ := otp.UserData["role"].(string)

	user := &models.User{
		Name:         name,
		Email:        otp.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRole(roleStr),
		IsVerified:   true,
	}

	if err := s.db.Create(user).Error; err != nil {
		// Someone completed registration for this email between the register
		// step and the code verification.
		if isUniqueViolation(err) {
			return nil, ConflictError("an account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponse(user)
}

// Login checks credentials and parks on a login OTP. Admins skip the OTP step
// and get a token straight away.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, *OTPPendingResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, nil, ValidationError("invalid email or password")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, nil, ValidationError("invalid email or password")
	}

	if user.Role == models.RoleAdmin {
		resp, err := s.buildAuthResponse(&user)
		return resp, nil, err
	}

	otp, code, err := s.issueOTP(user.Email, models.OTPPurposeLogin, nil)
	if err != nil {
		return nil, nil, err
	}

	s.sendOTP(user.Email, code, models.OTPPurposeLogin)

	return nil, &OTPPendingResponse{
		Email:     user.Email,
		Purpose:   models.OTPPurposeLogin,
		ExpiresAt: otp.ExpiresAt,
	}, nil
}

func (s *AuthService) VerifyLogin(req *VerifyOTPRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.consumeOTP(req.Email, req.Code, models.OTPPurposeLogin); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, NotFoundError("user not found")
	}

	return s.buildAuthResponse(&user)
}

// ResendOTP reissues the pending code for an in-flight flow. At most one
// resend per minute per (email, purpose).
func (s *AuthService) ResendOTP(req *ResendOTPRequest) (*OTPPendingResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.OTP
	if err := s.db.Where("email = ? AND purpose = ?", req.Email, req.Purpose).
		Order("created_at DESC").First(&existing).Error; err != nil {
		return nil, NotFoundError("no pending verification for this email")
	}

	if time.Since(existing.CreatedAt) < resendInterval {
		return nil, TooManyRequestsError("please wait before requesting another code")
	}

	otp, code, err := s.issueOTP(req.Email, req.Purpose, existing.UserData)
	if err != nil {
		return nil, err
	}

	s.sendOTP(req.Email, code, req.Purpose)

	return &OTPPendingResponse{
		Email:     req.Email,
		Purpose:   req.Purpose,
		ExpiresAt: otp.ExpiresAt,
	}, nil
}

func (s *AuthService) ForgotPassword(req *ForgotPasswordRequest) (*OTPPendingResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, NotFoundError("no account with this email")
	}

	otp, code, err := s.issueOTP(user.Email, models.OTPPurposeResetPassword, nil)
	if err != nil {
		return nil, err
	}

	s.sendOTP(user.Email, code, models.OTPPurposeResetPassword)

	return &OTPPendingResponse{
		Email:     user.Email,
		Purpose:   models.OTPPurposeResetPassword,
		ExpiresAt: otp.ExpiresAt,
	}, nil
}

func (s *AuthService) ResetPassword(req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.consumeOTP(req.Email, req.Code, models.OTPPurposeResetPassword); err != nil {
		return err
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return NotFoundError("user not found")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFoundError("user not found")
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFoundError("user not found")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.College != "" {
		updates["college"] = req.College
	}
	if req.Skills != nil {
		updates["skills"] = pq.StringArray(req.Skills)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return &user, nil
}

// UpdateRole switches between the non-privileged roles. Nobody promotes
// themselves to admin.
func (s *AuthService) UpdateRole(userID uuid.UUID, req *UpdateRoleRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.Role != models.RoleBuyer && req.Role != models.RoleSeller && req.Role != models.RoleBoth {
		return nil, ValidationError("invalid role")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFoundError("user not found")
	}

	if user.Role == models.RoleAdmin {
		return nil, ForbiddenError("admin role cannot be changed")
	}

	if err := s.db.Model(&user).Update("role", req.Role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = req.Role

	return &user, nil
}

// DeleteAccount removes the user and everything they listed. Orders and
// reviews stay behind as history.
func (s *AuthService) DeleteAccount(userID uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return NotFoundError("user not found")
	}

	if user.Role == models.RoleAdmin {
		return ForbiddenError("admin account cannot be deleted")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("seller_id = ?", userID).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("failed to delete projects: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.BankingDetails{}).Error; err != nil {
			return fmt.Errorf("failed to delete banking details: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// GetSellerProfile returns the public view of a seller, without the email.
func (s *AuthService) GetSellerProfile(sellerID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, sellerID).Error; err != nil {
		return nil, NotFoundError("seller not found")
	}

	if !user.Role.CanSell() {
		return nil, NotFoundError("seller not found")
	}

	user.Email = ""
	return &user, nil
}

// issueOTP replaces any live code for the (email, purpose) pair with a fresh
// one and returns the plaintext code for delivery.
func (s *AuthService) issueOTP(email string, purpose models.OTPPurpose, userData models.JSONB) (*models.OTP, string, error) {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &models.OTP{
		Email:     email,
		Purpose:   purpose,
		UserData:  userData,
		ExpiresAt: time.Now().Add(models.OTPTTL),
	}
	otp.SetCode(code)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("email = ? AND purpose = ?", email, purpose).
			Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to store otp: %w", err)
	}

	return otp, code, nil
}

// consumeOTP verifies and deletes the live code. Expired codes are removed as
// a side effect.
func (s *AuthService) consumeOTP(email, code string, purpose models.OTPPurpose) (*models.OTP, error) {
	var otp models.OTP
	if err := s.db.Where("email = ? AND purpose = ?", email, purpose).
		Order("created_at DESC").First(&otp).Error; err != nil {
		return nil, NotFoundError("no pending verification for this email")
	}

	if otp.Expired(time.Now()) {
		s.db.Unscoped().Delete(&otp)
		return nil, ExpiredError("verification code has expired")
	}

	if !otp.MatchCode(code) {
		return nil, ValidationError("invalid verification code")
	}

	if err := s.db.Unscoped().Delete(&otp).Error; err != nil {
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}

	return &otp, nil
}

func (s *AuthService) sendOTP(email, code string, purpose models.OTPPurpose) {
	go func() {
		if err := s.mailer.SendOTPEmail(email, code, purpose); err != nil {
			logrus.WithError(err).WithField("email", email).Error("Failed to send OTP email")
		}
	}()
}

func (s *AuthService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
