// internal/services/promo_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
)

type PromoServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *PromoService
}

func TestPromoServiceSuite(t *testing.T) {
	suite.Run(t, new(PromoServiceSuite))
}

func (s *PromoServiceSuite) SetupSuite() {
	s.db = setupTestDB(s.T())
	s.service = NewPromoService(s.db)
}

func (s *PromoServiceSuite) SetupTest() {
	truncateAll(s.T(), s.db)
}

func (s *PromoServiceSuite) createCode(sellerID uuid.UUID, req *CreatePromoCodeRequest) *models.PromoCode {
	promo, err := s.service.CreatePromoCode(sellerID, req)
	s.Require().NoError(err)
	return promo
}

func (s *PromoServiceSuite) TestCodeNormalizedOnCreate() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)

	promo := s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "save20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
	})

	s.Equal("SAVE20", promo.Code)
}

func (s *PromoServiceSuite) TestDuplicateCodeConflict() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)

	s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "SAVE20",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
	})

	other := createTestUser(s.T(), s.db, models.RoleSeller)
	_, err := s.service.CreatePromoCode(other.ID, &CreatePromoCodeRequest{
		Code:          "save20",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
	})
	s.Require().Error(err)
	s.Equal(KindConflict, KindOf(err))
}

func (s *PromoServiceSuite) TestRecreateCodeAfterDelete() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)

	promo := s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "SAVE20",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
	})
	s.Require().NoError(s.service.DeletePromoCode(promo.ID, seller.ID))

	// The code string is released on deletion.
	recreated := s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "SAVE20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
	})
	s.NotEqual(promo.ID, recreated.ID)
	s.Equal("SAVE20", recreated.Code)
}

func (s *PromoServiceSuite) TestValidateSellerScoped() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	otherSeller := createTestUser(s.T(), s.db, models.RoleSeller)

	mine := createTestProject(s.T(), s.db, seller.ID, 400.00)
	mineToo := createTestProject(s.T(), s.db, seller.ID, 600.00)
	theirs := createTestProject(s.T(), s.db, otherSeller.ID, 300.00)

	s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "SAVE20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
	})

	result, err := s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "save20",
		ProjectIDs: []uuid.UUID{mine.ID, mineToo.ID, theirs.ID},
	})
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{mine.ID, mineToo.ID}, result.ApplicableProjectIDs)

	// The applicable subtotal excludes the other seller's item.
	discount := models.ComputeDiscount(result.DiscountType, result.DiscountValue, 400.00+600.00)
	s.Equal(200.00, discount)
}

func (s *PromoServiceSuite) TestValidateNotApplicable() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	otherSeller := createTestUser(s.T(), s.db, models.RoleSeller)
	theirs := createTestProject(s.T(), s.db, otherSeller.ID, 300.00)

	s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "SAVE20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
	})

	_, err := s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "SAVE20",
		ProjectIDs: []uuid.UUID{theirs.ID},
	})
	s.Require().Error(err)
	s.Equal(KindValidation, KindOf(err))
}

func (s *PromoServiceSuite) TestProjectBoundCode() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	bound := createTestProject(s.T(), s.db, seller.ID, 100.00)
	unbound := createTestProject(s.T(), s.db, seller.ID, 200.00)

	s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "ONLYONE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 25,
		ProjectID:     &bound.ID,
	})

	result, err := s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "ONLYONE",
		ProjectIDs: []uuid.UUID{bound.ID, unbound.ID},
	})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{bound.ID}, result.ApplicableProjectIDs)

	_, err = s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "ONLYONE",
		ProjectIDs: []uuid.UUID{unbound.ID},
	})
	s.Require().Error(err)
	s.Equal(KindValidation, KindOf(err))
}

func (s *PromoServiceSuite) TestProjectBoundToForeignProjectRejected() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	otherSeller := createTestUser(s.T(), s.db, models.RoleSeller)
	theirs := createTestProject(s.T(), s.db, otherSeller.ID, 300.00)

	_, err := s.service.CreatePromoCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "NOTMINE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 25,
		ProjectID:     &theirs.ID,
	})
	s.Require().Error(err)
	s.Equal(KindForbidden, KindOf(err))
}

func (s *PromoServiceSuite) TestValidateExpired() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	past := time.Now().Add(-time.Hour)
	s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "EXPIRED1",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
		ExpiresAt:     &past,
	})

	_, err := s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "EXPIRED1",
		ProjectIDs: []uuid.UUID{project.ID},
	})
	s.Require().Error(err)
	s.Equal(KindExpired, KindOf(err))
}

func (s *PromoServiceSuite) TestUsageLimitConsumedAtValidation() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	promo := s.createCode(seller.ID, &CreatePromoCodeRequest{
		Code:          "ONCE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
		UsageLimit:    1,
	})

	_, err := s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "ONCE",
		ProjectIDs: []uuid.UUID{project.ID},
	})
	s.Require().NoError(err)

	var reloaded models.PromoCode
	s.Require().NoError(s.db.First(&reloaded, promo.ID).Error)
	s.Equal(int64(1), reloaded.UsedCount)

	_, err = s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "ONCE",
		ProjectIDs: []uuid.UUID{project.ID},
	})
	s.Require().Error(err)
	s.Equal(KindConflict, KindOf(err))
}

func (s *PromoServiceSuite) TestValidateUnknownCode() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	_, err := s.service.ValidatePromoCode(&ValidatePromoCodeRequest{
		Code:       "NOPE",
		ProjectIDs: []uuid.UUID{project.ID},
	})
	s.Require().Error(err)
	s.Equal(KindNotFound, KindOf(err))
}

func (s *PromoServiceSuite) TestBuyerCannotCreateCode() {
	buyer := createTestUser(s.T(), s.db, models.RoleBuyer)

	_, err := s.service.CreatePromoCode(buyer.ID, &CreatePromoCodeRequest{
		Code:          "NICETRY",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
	})
	s.Require().Error(err)
	s.Equal(KindForbidden, KindOf(err))
}
