package service

import (
	"context"
	"time"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/pkg/errors"
)

// Clock dipakai supaya waktu bisa dikontrol di test.
type Clock func() time.Time

// notFoundOr mengubah repository.ErrNotFound menjadi NotFoundError.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(entity)
	}
	return err
}

// courseRef menempatkan mata kuliah di pohon organisasi.
func courseRef(ctx context.Context, org repository.OrgRepository, c *model.Course) (model.OrgRef, error) {
	ref, err := repository.ResolveOrgRef(ctx, org, c.OrgOwner)
	if err != nil {
		return ref, errors.Wrapf(err, "resolve owner of course %d", c.ID)
	}
	return ref, nil
}

// readable: pembaca tanpa batas melihat semuanya, pembaca lain melihat
// resource di scope-nya ATAU milik level institusi.
func readable(scope model.Scope, ref model.OrgRef) bool {
	if scope.IsUnrestricted() {
		return true
	}
	return scope.CoversOrShared(ref)
}

// writable: penulisan tidak pernah memakai aturan shared.
func writable(scope model.Scope, ref model.OrgRef) bool {
	if scope.IsUnrestricted() {
		return true
	}
	return scope.Covers(ref)
}

func strPtr(s string) *string { return &s }
