package domain

import "time"

// OTPRecord is a one-time email verification code.
// PK: email (normalized). Keying on the email means issuing a new code is a
// single overwrite that supersedes any earlier code for the same address.
// ExpiresAt is a Unix timestamp, also used as the DynamoDB TTL attribute.
type OTPRecord struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Expired reports whether the record is past its expiry at the given instant.
func (r *OTPRecord) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}
