package service

import (
	"context"
	"fmt"
	"log"

	"kidpoints/internal/avatars"
	"kidpoints/internal/models"
	"kidpoints/internal/repository"
	"kidpoints/internal/storage"
)

// AvatarUpload carries the raw bytes of an already-compressed avatar image.
// A zero-value upload means "no avatar provided".
type AvatarUpload struct {
	Data        []byte
	ContentType string
}

// Empty reports whether no avatar bytes were provided
func (u AvatarUpload) Empty() bool {
	return len(u.Data) == 0
}

// FamilyService manages child profiles and their avatar assets.
//
// Avatar storage keys derive from the child's id, which doesn't exist until
// the row is inserted, so uploads are two-phase: store the bytes under a
// random temporary key, insert the record referencing that address, then
// promote the object to its permanent child-keyed address. Both failure
// modes degrade rather than abort: a failed upload falls back to an inline
// placeholder, and a failed promotion leaves a valid temporarily-keyed
// avatar to be retried later.
type FamilyService struct {
	children    *repository.ChildRepository
	completions *repository.CompletionRepository
	payouts     *repository.PayoutRepository
	store       storage.ObjectStore
}

// NewFamilyService creates a new family service
func NewFamilyService(children *repository.ChildRepository, completions *repository.CompletionRepository, payouts *repository.PayoutRepository, store storage.ObjectStore) *FamilyService {
	return &FamilyService{
		children:    children,
		completions: completions,
		payouts:     payouts,
		store:       store,
	}
}

// AddChild creates a child profile, uploading and promoting the avatar when
// one is provided. The child is always created: avatar failures degrade to a
// placeholder or a temporarily-keyed address, never to a failed operation.
func (s *FamilyService) AddChild(ctx context.Context, ownerID int64, name string, avatar AvatarUpload) (*models.Child, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: child name is required", ErrInvalidInput)
	}

	avatarRef, uploaded := s.uploadProvisional(ctx, avatar)

	child, err := s.children.CreateChild(ctx, ownerID, name, avatarRef)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	if uploaded {
		if ref, err := s.promoteAvatar(ctx, child.ID, avatarRef); err != nil {
			log.Printf("Avatar promotion for child %d deferred: %v", child.ID, err)
		} else {
			child.AvatarRef = ref
		}
	}

	return child, nil
}

// EditChild updates a child's name and, when avatar bytes are provided,
// replaces the stored avatar using the same two-phase protocol as AddChild.
func (s *FamilyService) EditChild(ctx context.Context, ownerID, childID int64, name string, avatar AvatarUpload) (*models.Child, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: child name is required", ErrInvalidInput)
	}

	child, err := s.GetChild(ctx, ownerID, childID)
	if err != nil {
		return nil, err
	}

	if err := s.children.UpdateName(ctx, childID, name); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	child.Name = name

	if !avatar.Empty() {
		oldRef := child.AvatarRef

		avatarRef, uploaded := s.uploadProvisional(ctx, avatar)
		if uploaded {
			if err := s.children.UpdateAvatarRef(ctx, childID, avatarRef); err != nil {
				return nil, fmt.Errorf("failed to update child avatar: %w", err)
			}
			child.AvatarRef = avatarRef

			if ref, err := s.promoteAvatar(ctx, childID, avatarRef); err != nil {
				log.Printf("Avatar promotion for child %d deferred: %v", childID, err)
			} else {
				child.AvatarRef = ref
			}

			s.deleteAvatarObject(ctx, childID, oldRef, child.AvatarRef)
		}
	}

	return child, nil
}

// RemoveChild deletes a child profile along with its ledger rows, payout
// history, and avatar object. Removing an already-absent child is not an
// error, so a retried removal converges.
func (s *FamilyService) RemoveChild(ctx context.Context, ownerID, childID int64) error {
	child, err := s.children.GetChildByID(ctx, childID)
	if err != nil {
		return err
	}
	if child == nil {
		return nil
	}
	if child.OwnerID != ownerID {
		return fmt.Errorf("%w: child %d", ErrNotFound, childID)
	}

	if err := s.completions.DeleteByChild(ctx, childID); err != nil {
		return err
	}
	if err := s.payouts.DeleteByChild(ctx, childID); err != nil {
		return err
	}
	if err := s.children.DeleteChild(ctx, childID); err != nil {
		return err
	}

	s.deleteAvatarObject(ctx, childID, child.AvatarRef, "")
	return nil
}

// GetChild retrieves one of the owner's children
func (s *FamilyService) GetChild(ctx context.Context, ownerID, childID int64) (*models.Child, error) {
	child, err := s.children.GetChildByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: child %d", ErrNotFound, childID)
	}
	return child, nil
}

// GetChildren retrieves all children in the family account
func (s *FamilyService) GetChildren(ctx context.Context, ownerID int64) ([]models.Child, error) {
	return s.children.GetOwnerChildren(ctx, ownerID)
}

// PromotePendingAvatars retries promotion for every child whose avatar is
// still parked on a temporary key. Failures are logged and skipped; the pass
// reports how many avatars it moved.
func (s *FamilyService) PromotePendingAvatars(ctx context.Context) (int, error) {
	pending, err := s.children.ListByAvatarFragment(ctx, avatars.TempKeyMarker())
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, child := range pending {
		if _, err := s.promoteAvatar(ctx, child.ID, child.AvatarRef); err != nil {
			log.Printf("Avatar promotion for child %d still failing: %v", child.ID, err)
			continue
		}
		promoted++
	}
	return promoted, nil
}

// uploadProvisional stores avatar bytes under a fresh temporary key and
// returns the reference to record. When no bytes were provided, or the
// upload fails, it falls back to an inline placeholder so the owning
// operation can proceed.
func (s *FamilyService) uploadProvisional(ctx context.Context, avatar AvatarUpload) (ref string, uploaded bool) {
	if avatar.Empty() {
		return avatars.RandomPlaceholder(), false
	}

	tempKey := avatars.NewTempKey()
	addr, err := s.store.Upload(ctx, tempKey, avatar.Data, avatar.ContentType)
	if err != nil {
		log.Printf("Avatar upload failed, falling back to placeholder: %v", err)
		return avatars.RandomPlaceholder(), false
	}
	return addr, true
}

// promoteAvatar moves a temporarily-keyed avatar object to the permanent
// child-keyed address and updates the record. On failure the child keeps the
// temporary address, which still resolves; the caller retries lazily.
func (s *FamilyService) promoteAvatar(ctx context.Context, childID int64, tempRef string) (string, error) {
	key, ok := avatars.KeyFromRef(tempRef)
	if !ok {
		return "", fmt.Errorf("%w: no storage key in reference %q", ErrAssetFailure, tempRef)
	}

	addr, err := s.store.Move(ctx, key, avatars.ChildKey(childID))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetFailure, err)
	}

	if err := s.children.UpdateAvatarRef(ctx, childID, addr); err != nil {
		return "", err
	}
	return addr, nil
}

// deleteAvatarObject removes a child's stored avatar object, best-effort.
// Placeholder references and the currently-referenced object are skipped.
func (s *FamilyService) deleteAvatarObject(ctx context.Context, childID int64, ref, currentRef string) {
	if ref == "" || ref == currentRef {
		return
	}
	key, ok := avatars.KeyFromRef(ref)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Printf("Failed to delete avatar object for child %d: %v", childID, err)
	}
}
