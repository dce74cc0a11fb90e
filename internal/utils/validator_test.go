// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ifscFixture struct {
	Code string `validate:"ifsc"`
}

type promoFixture struct {
	Code string `validate:"promo_code"`
}

func TestIFSCValidation(t *testing.T) {
	valid := []string{"SBIN0001234", "HDFC0QWERTY", "icic0000123"}
	for _, code := range valid {
		assert.NoError(t, ValidateStruct(&ifscFixture{Code: code}), code)
	}

	invalid := []string{"SBIN1001234", "SBI00001234", "SBIN000123", "SBIN00012345", ""}
	for _, code := range invalid {
		assert.Error(t, ValidateStruct(&ifscFixture{Code: code}), code)
	}
}

func TestPromoCodeValidation(t *testing.T) {
	valid := []string{"SAVE20", "abc", "Diwali2024Special123"}
	for _, code := range valid {
		assert.NoError(t, ValidateStruct(&promoFixture{Code: code}), code)
	}

	invalid := []string{"ab", "SAVE 20", "SAVE-20", "ThisCodeIsWayTooLongOk"}
	for _, code := range invalid {
		assert.Error(t, ValidateStruct(&promoFixture{Code: code}), code)
	}
}
