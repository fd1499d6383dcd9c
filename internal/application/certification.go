package application

import "github.com/google/uuid"

// CertificationGenerator produces the code mailed to a new user.
type CertificationGenerator interface {
	Generate() (string, error)
}

// UUIDCertificationGenerator issues random v4 UUIDs.
type UUIDCertificationGenerator struct{}

func (UUIDCertificationGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
