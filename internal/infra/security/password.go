package security

import "golang.org/x/crypto/bcrypt"

// BcryptHasher hashes passwords with bcrypt. Zero value uses the library
// default cost; an out-of-range Cost is clamped rather than rejected.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (h BcryptHasher) cost() int {
	switch {
	case h.Cost < bcrypt.MinCost:
		return bcrypt.DefaultCost
	case h.Cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	default:
		return h.Cost
	}
}
