package services

import (
	"errors"
	"strings"

	"github.com/terraincognita07/ovella/internal/security"
)

// Recovery codes look like 7Q2M-XK9F-4TNB-R6WD. The alphabet drops 0/O/1/I
// to keep hand-typed codes unambiguous.
const (
	recoveryCodeAlphabet    = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	recoveryCodeGroupLength = 4
	recoveryCodeGroups      = 4
)

var ErrInvalidRecoveryCodeFormat = errors.New("invalid recovery code format")

func GenerateRecoveryCode() (string, error) {
	groups := make([]string, 0, recoveryCodeGroups)
	for i := 0; i < recoveryCodeGroups; i++ {
		group, err := security.RandomString(recoveryCodeGroupLength, recoveryCodeAlphabet)
		if err != nil {
			return "", err
		}
		groups = append(groups, group)
	}
	return strings.Join(groups, "-"), nil
}

func NormalizeRecoveryCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.ReplaceAll(code, " ", "")
}

func ValidateRecoveryCodeFormat(code string) error {
	groups := strings.Split(code, "-")
	if len(groups) != recoveryCodeGroups {
		return ErrInvalidRecoveryCodeFormat
	}
	for _, group := range groups {
		if len(group) != recoveryCodeGroupLength {
			return ErrInvalidRecoveryCodeFormat
		}
		for _, r := range group {
			if !strings.ContainsRune(recoveryCodeAlphabet, r) {
				return ErrInvalidRecoveryCodeFormat
			}
		}
	}
	return nil
}
