package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerLetters = "abcdefghijkmnopqrstuvwxyz"
	digits       = "23456789"

	minTemporaryPasswordLength = 8
)

var errTemporaryPasswordTooShort = errors.New("temporary password must be at least 8 characters")

// TemporaryPassword returns a random password with at least one upper-case
// letter, one lower-case letter and one digit. Look-alike characters such as
// O/0 and l/1 are never used.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		return "", errTemporaryPasswordTooShort
	}

	password := make([]byte, 0, length)
	for _, class := range []string{upperLetters, lowerLetters, digits} {
		char, err := pick(class)
		if err != nil {
			return "", err
		}
		password = append(password, char)
	}

	alphabet := upperLetters + lowerLetters + digits
	for len(password) < length {
		char, err := pick(alphabet)
		if err != nil {
			return "", err
		}
		password = append(password, char)
	}

	// Fisher-Yates so the guaranteed classes do not sit at fixed positions.
	for index := len(password) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		password[index], password[swap] = password[swap], password[index]
	}
	return string(password), nil
}

func pick(alphabet string) (byte, error) {
	index, err := randomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[index], nil
}

func randomIndex(upper int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(upper)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
