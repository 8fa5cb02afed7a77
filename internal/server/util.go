package server

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const guestPrefix = "guest_"

func newJoinCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

func newGuestID() string {
	return guestPrefix + uuid.NewString()
}

func isGuest(accountID string) bool {
	return accountID == "" || strings.HasPrefix(accountID, guestPrefix)
}
