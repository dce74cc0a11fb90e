// internal/services/auth_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

// captureMailer records the codes the auth flow would email.
type captureMailer struct {
	codes chan string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{codes: make(chan string, 8)}
}

func (m *captureMailer) SendOTPEmail(email, code string, purpose models.OTPPurpose) error {
	m.codes <- code
	return nil
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	select {
	case code := <-m.codes:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("no OTP email was sent")
		return ""
	}
}

type AuthServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	mailer  *captureMailer
	service *AuthService
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupSuite() {
	s.db = setupTestDB(s.T())
	utils.SetJWTSecret("test-secret")
}

func (s *AuthServiceSuite) SetupTest() {
	truncateAll(s.T(), s.db)
	s.mailer = newCaptureMailer()
	s.service = NewAuthService(s.db, testConfig(), s.mailer)
}

func (s *AuthServiceSuite) TestRegisterVerifyFlow() {
	pending, err := s.service.Register(&RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret123",
		Role:     models.RoleSeller,
	})
	s.Require().NoError(err)
	s.Equal(models.OTPPurposeRegister, pending.Purpose)

	// No user row until the code is verified.
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", "asha@example.com").Count(&count)
	s.Equal(int64(0), count)

	code := s.mailer.lastCode(s.T())

	auth, err := s.service.VerifyRegistration(&VerifyOTPRequest{
		Email: "asha@example.com",
		Code:  code,
	})
	s.Require().NoError(err)
	s.Equal("Asha", auth.User.Name)
	s.Equal(models.RoleSeller, auth.User.Role)
	s.True(auth.User.IsVerified)
	s.NotEmpty(auth.AccessToken)

	claims, err := utils.ValidateJWT(auth.AccessToken)
	s.Require().NoError(err)
	s.Equal(auth.User.ID.String(), claims.UserID)

	// The code is consumed on verification.
	_, err = s.service.VerifyRegistration(&VerifyOTPRequest{
		Email: "asha@example.com",
		Code:  code,
	})
	s.Require().Error(err)
	s.Equal(KindNotFound, KindOf(err))
}

func (s *AuthServiceSuite) TestVerifyWithWrongCode() {
	_, err := s.service.Register(&RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret123",
	})
	s.Require().NoError(err)
	s.mailer.lastCode(s.T())

	_, err = s.service.VerifyRegistration(&VerifyOTPRequest{
		Email: "asha@example.com",
		Code:  "000000",
	})
	s.Require().Error(err)
	s.Equal(KindValidation, KindOf(err))
}

func (s *AuthServiceSuite) TestVerifyExpiredCode() {
	_, err := s.service.Register(&RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret123",
	})
	s.Require().NoError(err)
	code := s.mailer.lastCode(s.T())

	s.Require().NoError(s.db.Model(&models.OTP{}).
		Where("email = ?", "asha@example.com").
		UpdateColumn("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = s.service.VerifyRegistration(&VerifyOTPRequest{
		Email: "asha@example.com",
		Code:  code,
	})
	s.Require().Error(err)
	s.Equal(KindExpired, KindOf(err))
}

func (s *AuthServiceSuite) TestLoginParksOnOTP() {
	user := createTestUser(s.T(), s.db, models.RoleBuyer)

	auth, pending, err := s.service.Login(&LoginRequest{
		Email:    user.Email,
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Nil(auth)
	s.Require().NotNil(pending)
	s.Equal(models.OTPPurposeLogin, pending.Purpose)

	code := s.mailer.lastCode(s.T())

	verified, err := s.service.VerifyLogin(&VerifyOTPRequest{
		Email: user.Email,
		Code:  code,
	})
	s.Require().NoError(err)
	s.Equal(user.ID, verified.User.ID)
	s.NotEmpty(verified.AccessToken)
}

func (s *AuthServiceSuite) TestAdminLoginSkipsOTP() {
	admin := createTestUser(s.T(), s.db, models.RoleAdmin)

	auth, pending, err := s.service.Login(&LoginRequest{
		Email:    admin.Email,
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Nil(pending)
	s.Require().NotNil(auth)
	s.NotEmpty(auth.AccessToken)
}

func (s *AuthServiceSuite) TestResendGuard() {
	user := createTestUser(s.T(), s.db, models.RoleBuyer)

	_, pending, err := s.service.Login(&LoginRequest{
		Email:    user.Email,
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Require().NotNil(pending)
	s.mailer.lastCode(s.T())

	_, err = s.service.ResendOTP(&ResendOTPRequest{
		Email:   user.Email,
		Purpose: models.OTPPurposeLogin,
	})
	s.Require().Error(err)
	s.Equal(KindTooMany, KindOf(err))
}

func (s *AuthServiceSuite) TestResetPasswordFlow() {
	user := createTestUser(s.T(), s.db, models.RoleBuyer)

	_, err := s.service.ForgotPassword(&ForgotPasswordRequest{Email: user.Email})
	s.Require().NoError(err)
	code := s.mailer.lastCode(s.T())

	err = s.service.ResetPassword(&ResetPasswordRequest{
		Email:       user.Email,
		Code:        code,
		NewPassword: "brandnew456",
	})
	s.Require().NoError(err)

	var reloaded models.User
	s.Require().NoError(s.db.First(&reloaded, user.ID).Error)
	s.NoError(reloaded.CheckPassword("brandnew456"))
	s.Error(reloaded.CheckPassword("password123"))
}

func (s *AuthServiceSuite) TestDuplicateEmailRejected() {
	user := createTestUser(s.T(), s.db, models.RoleBuyer)

	_, err := s.service.Register(&RegisterRequest{
		Name:     "Imposter",
		Email:    user.Email,
		Password: "secret123",
	})
	s.Require().Error(err)
	s.Equal(KindConflict, KindOf(err))
}

func (s *AuthServiceSuite) TestReRegisterAfterAccountDeletion() {
	user := createTestUser(s.T(), s.db, models.RoleBuyer)
	email := user.Email

	s.Require().NoError(s.service.DeleteAccount(user.ID))

	// The email is free again: the whole register flow must succeed, not
	// just the OTP step.
	_, err := s.service.Register(&RegisterRequest{
		Name:     "Asha",
		Email:    email,
		Password: "secret123",
	})
	s.Require().NoError(err)
	code := s.mailer.lastCode(s.T())

	auth, err := s.service.VerifyRegistration(&VerifyOTPRequest{
		Email: email,
		Code:  code,
	})
	s.Require().NoError(err)
	s.Equal(email, auth.User.Email)
	s.NotEqual(user.ID, auth.User.ID)
}

func (s *AuthServiceSuite) TestRoleUpdateGuards() {
	user := createTestUser(s.T(), s.db, models.RoleBuyer)

	updated, err := s.service.UpdateRole(user.ID, &UpdateRoleRequest{Role: models.RoleBoth})
	s.Require().NoError(err)
	s.Equal(models.RoleBoth, updated.Role)

	_, err = s.service.UpdateRole(user.ID, &UpdateRoleRequest{Role: models.RoleAdmin})
	s.Require().Error(err)
	s.Equal(KindValidation, KindOf(err))
}

func (s *AuthServiceSuite) TestDeleteAccountCascadesProjects() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	createTestProject(s.T(), s.db, seller.ID, 100.00)

	s.Require().NoError(s.service.DeleteAccount(seller.ID))

	var projectCount int64
	s.db.Model(&models.Project{}).Where("seller_id = ?", seller.ID).Count(&projectCount)
	s.Equal(int64(0), projectCount)

	var userCount int64
	s.db.Model(&models.User{}).Where("id = ?", seller.ID).Count(&userCount)
	s.Equal(int64(0), userCount)
}
