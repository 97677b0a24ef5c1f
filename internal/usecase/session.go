package usecase

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/validation"
)

// currentIdentity returns the signed-in identity placed in ctx by the auth middleware.
func currentIdentity(ctx context.Context) (*domain.Identity, error) {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("Please sign in to continue")
	}
	return identity, nil
}

func validateRequest(v *validator.Validate, req any) error {
	if err := v.Struct(req); err != nil {
		return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
