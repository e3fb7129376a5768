package auth

import (
	"net/http"

	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Failure kinds reported by the gates. They are shared sentinels: compare
// with errors.Is and never mutate them.
var (
	ErrMissingToken = apperrors.NewDomainError(apperrors.CodeMissingToken,
		"Access denied. No token provided.", http.StatusUnauthorized, nil)
	ErrInvalidToken = apperrors.NewDomainError(apperrors.CodeInvalidToken,
		"Token is not valid.", http.StatusUnauthorized, nil)
	ErrExpiredToken = apperrors.NewDomainError(apperrors.CodeExpiredToken,
		"Token has expired. Please log in again.", http.StatusUnauthorized, nil)
	ErrForbidden = apperrors.NewDomainError(apperrors.CodeForbidden,
		"Access denied. Insufficient permissions.", http.StatusForbidden, nil)
	ErrInvalidCredentials = apperrors.NewDomainError(apperrors.CodeInvalidCredentials,
		"Invalid credentials", http.StatusUnauthorized, nil)
	ErrDuplicateEmail = apperrors.NewDomainError(apperrors.CodeDuplicateEmail,
		"User already exists", http.StatusConflict, nil)
)
