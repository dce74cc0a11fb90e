// internal/models/otp.go
package models

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// OTPTTL is how long a one-time code stays valid after being issued.
const OTPTTL = 5 * time.Minute

// OTP is a short-lived, single-purpose verification record. At most one live
// record exists per (email, purpose): issuing a new code deletes its
// predecessors, and a successful verification consumes the record.
type OTP struct {
	BaseModel
	Email    string     `json:"email" gorm:"size:255;not null;index:idx_otps_email_purpose"`
	CodeHash string     `json:"-" gorm:"size:64;not null"`
	Purpose  OTPPurpose `json:"purpose" gorm:"type:varchar(20);not null;index:idx_otps_email_purpose"`

	// Pending registration payload, only used for the register purpose. The
	// user row is not created until the code is verified.
	UserData JSONB `json:"-" gorm:"type:jsonb"`

	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// SetCode stores the sha256 of the plaintext code; the plaintext itself is
// only ever sent to the user's email.
func (o *OTP) SetCode(code string) {
	o.CodeHash = hashOTP(code)
}

func (o *OTP) MatchCode(code string) bool {
	return subtle.ConstantTimeCompare([]byte(o.CodeHash), []byte(hashOTP(code))) == 1
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
