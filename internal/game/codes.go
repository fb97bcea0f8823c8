package game

import (
	"crypto/rand"
	"fmt"
	"time"

	"gorm.io/gorm"

	"temix/internal/db"
)

const (
	joinCodeLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	joinCodeDigits   = "0123456789"
	joinCodeAttempts = 10
)

// newJoinCode returns a human-typable code: 3 uppercase letters followed
// by 4 digits.
func newJoinCode() string {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "AAA0000"
	}
	out := make([]byte, 7)
	for i := 0; i < 3; i++ {
		out[i] = joinCodeLetters[int(buf[i])%len(joinCodeLetters)]
	}
	for i := 3; i < 7; i++ {
		out[i] = joinCodeDigits[int(buf[i])%len(joinCodeDigits)]
	}
	return string(out)
}

// generateJoinCode retries against the store a bounded number of times,
// then falls back to a timestamp-suffixed code to guarantee termination.
func generateJoinCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code := newJoinCode()
		var count int64
		if err := tx.Model(&db.Room{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	millis := time.Now().UnixMilli()
	return fmt.Sprintf("%s%02d", newJoinCode(), millis%100), nil
}
