// Package service provides the business logic for authentication, user
// administration, and the object lifecycle, delegating persistence to
// repository interfaces.
package service

import (
	"slices"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// The policy predicates below are the single place where actor roles meet the
// object state machine. Handlers and services never compare roles or statuses
// directly; they call these.

// CanAccess reports whether the actor has any relationship to the object:
// creator, assignee, or admin.
func CanAccess(actor *models.User, obj *models.Object) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return obj.CreatedBy == actor.ID || slices.Contains(obj.AssignedTo, actor.ID)
}

// CanMutate decides whether the actor may change object fields or images in
// the object's current status. Returns nil when allowed,
// apperrors.ErrUnauthorized when the actor has no access at all, and an
// EditForbiddenError naming the blocking status otherwise.
func CanMutate(actor *models.User, obj *models.Object) error {
	if !CanAccess(actor, obj) {
		return apperrors.ErrUnauthorized
	}
	switch obj.Status {
	case models.StatusDraft, models.StatusRejected:
		return nil
	case models.StatusCompleted:
		// Frozen for everyone, admins included.
		return apperrors.NewEditForbidden(apperrors.ReasonCompleted)
	case models.StatusDeleted:
		return apperrors.NewEditForbidden(apperrors.ReasonDeleted)
	case models.StatusReleased:
		if actor.Role == models.RoleAdmin {
			return nil
		}
		return apperrors.NewEditForbidden(apperrors.ReasonReleased)
	case models.StatusUnderReview:
		if actor.Role == models.RoleAdmin {
			return nil
		}
		return apperrors.NewEditForbidden(apperrors.ReasonUnderReview)
	}
	return apperrors.NewEditForbidden(apperrors.ReasonDeleted)
}

// CanTransition decides whether the actor may move the object from its
// current status to target. Returns nil when allowed.
//
// Non-admins may only submit: draft or rejected to released, and only on
// objects they can access. Every other transition is reserved for admins.
// Completed and deleted objects accept no transition from anyone.
func CanTransition(actor *models.User, obj *models.Object, target models.Status) error {
	if !target.Valid() {
		return apperrors.ErrInvalidTransition
	}
	if !CanAccess(actor, obj) {
		return apperrors.ErrUnauthorized
	}
	switch obj.Status {
	case models.StatusCompleted, models.StatusDeleted:
		return apperrors.ErrInvalidTransition
	}
	if target == obj.Status {
		return apperrors.ErrInvalidTransition
	}

	if actor.Role == models.RoleAdmin {
		return nil
	}

	// The one transition open to regular users: submitting an editable
	// object for release.
	submittable := obj.Status == models.StatusDraft || obj.Status == models.StatusRejected
	if submittable && target == models.StatusReleased {
		return nil
	}
	return apperrors.ErrRoleRequired
}
