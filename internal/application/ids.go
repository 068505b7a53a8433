package application

import (
	"github.com/google/uuid"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
)

// checkID rejects malformed identifiers before any store call. A malformed id
// is reported as the same NotFound a missing row would produce.
func checkID(id, notFound string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.New(apperror.NotFound, notFound)
	}
	return nil
}
