package auth

import (
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyPassword compares in constant time; a nil error means a match.
func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// dummyHash is compared against when the username is unknown so that both
// login failures take the same time.
var dummyHash, _ = HashPassword("reliefshare-no-such-user")

func BurnCompare(plain string) {
	_ = VerifyPassword(plain, dummyHash)
}
