package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/caro-backend/internal/apperror"
)

const (
	// RoomCodeAlphabet leaves out 0, O, 1 and I.
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 6
)

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateRoomCode - generates a random room code.
func GenerateRoomCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(RoomCodeAlphabet)))

	var code strings.Builder
	code.Grow(RoomCodeLength)

	for i := 0; i < RoomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to read random index: %w", err)
		}

		code.WriteByte(RoomCodeAlphabet[n.Int64()])
	}

	return code.String(), nil
}

// NormalizeRoomCode - trims and uppercases user input and validates the result.
func NormalizeRoomCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))

	if len(code) != RoomCodeLength {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidRoomCode, raw)
	}

	for _, r := range code {
		if !strings.ContainsRune(RoomCodeAlphabet, r) {
			return "", fmt.Errorf("%w: %q", apperror.ErrInvalidRoomCode, raw)
		}
	}

	return code, nil
}
