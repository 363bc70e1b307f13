package utils

import "github.com/google/uuid"

// NormalizeUUID parses s as a UUID and returns its canonical lowercase form.
// Accepts the braced and urn:uuid: forms uuid.Parse understands.
func NormalizeUUID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
