package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

// lookupError maps a repository read failure onto a 404 or a database error.
func lookupError(err error, notFound string) *appErrors.AppError {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NotFoundError(notFound).WithError(err)
	}

	return appErrors.DatabaseError("Failed to load " + notFoundSubject(notFound)).WithError(err)
}

func notFoundSubject(msg string) string {
	const suffix = " not found"
	if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
		return lowerFirst(msg[:len(msg)-len(suffix)])
	}

	return "record"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}

	return string(b)
}

// canAccess reports whether the requester owns the resource or is an admin.
func canAccess(requester *models.Claims, ownerID uuid.UUID) bool {
	if requester == nil {
		return false
	}

	return requester.IsAdmin() || requester.UserID == ownerID
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
