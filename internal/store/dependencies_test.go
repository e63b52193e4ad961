package store

import (
	"errors"
	"testing"

	apperrors "github.com/wavechat/modstore/internal/errors"
)

func TestSentinelsSharedWithErrorsPackage(t *testing.T) {
	t.Parallel()

	for name, pair := range map[string][2]error{
		"not found":   {ErrNotFound, apperrors.ErrNotFound},
		"user exists": {ErrUserExists, apperrors.ErrAlreadyExists},
		"constraint":  {ErrConstraint, apperrors.ErrConstraint},
	} {
		if !errors.Is(pair[0], pair[1]) {
			t.Errorf("%s: store sentinel does not match shared sentinel", name)
		}
	}
}
