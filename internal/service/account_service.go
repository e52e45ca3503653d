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

// IdentityProvider is the external collaborator that owns sessions and
// credentials. The orchestrator only ever asks it to sign an account out.
type IdentityProvider interface {
	SignOut(ctx context.Context, ownerID int64) error
}

// NoopIdentityProvider is used when no identity provider is wired, for
// example in tests and local development.
type NoopIdentityProvider struct{}

// SignOut does nothing
func (NoopIdentityProvider) SignOut(ctx context.Context, ownerID int64) error { return nil }

// AccountService owns the account lifecycle: signup, profile updates, and
// the cascading deletion of everything an account owns.
type AccountService struct {
	owners      *repository.OwnerRepository
	children    *repository.ChildRepository
	activities  *repository.ActivityRepository
	completions *repository.CompletionRepository
	payouts     *repository.PayoutRepository
	store       storage.ObjectStore
	idp         IdentityProvider
	notifier    *NotifyService
}

// NewAccountService creates a new account service
func NewAccountService(owners *repository.OwnerRepository, children *repository.ChildRepository, activities *repository.ActivityRepository, completions *repository.CompletionRepository, payouts *repository.PayoutRepository, store storage.ObjectStore, idp IdentityProvider, notifier *NotifyService) *AccountService {
	return &AccountService{
		owners:      owners,
		children:    children,
		activities:  activities,
		completions: completions,
		payouts:     payouts,
		store:       store,
		idp:         idp,
		notifier:    notifier,
	}
}

// CreateAccount creates a new family account. The notification email, when
// provided by the caller, gets a best-effort welcome message.
func (s *AccountService) CreateAccount(ctx context.Context, displayName, notifyEmail string) (*models.Owner, error) {
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	owner, err := s.owners.CreateOwner(ctx, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if notifyEmail != "" {
		if err := s.notifier.SendWelcome(ctx, notifyEmail, displayName); err != nil {
			log.Printf("Failed to send welcome email: %v", err)
		}
	}

	return owner, nil
}

// GetAccount retrieves an owner record
func (s *AccountService) GetAccount(ctx context.Context, ownerID int64) (*models.Owner, error) {
	owner, err := s.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: owner %d", ErrNotFound, ownerID)
	}
	return owner, nil
}

// UpdateAccountName updates the family's display name
func (s *AccountService) UpdateAccountName(ctx context.Context, ownerID int64, displayName string) error {
	if displayName == "" {
		return fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	if _, err := s.GetAccount(ctx, ownerID); err != nil {
		return err
	}
	return s.owners.UpdateDisplayName(ctx, ownerID, displayName)
}

// DeleteAccount removes everything the account owns, in dependency order:
// ledger rows and payouts for each child, then the children and their
// avatar objects, then the activities, then the owner record, and finally
// an identity-provider sign-out request.
//
// No cross-table transaction is assumed. Every step tolerates already-absent
// rows, so a retried deletion after a mid-sequence failure converges to the
// same empty state.
func (s *AccountService) DeleteAccount(ctx context.Context, ownerID int64, notifyEmail string) error {
	owner, err := s.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return err
	}

	children, err := s.children.GetOwnerChildren(ctx, ownerID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := s.completions.DeleteByChild(ctx, child.ID); err != nil {
			return err
		}
		if err := s.payouts.DeleteByChild(ctx, child.ID); err != nil {
			return err
		}
	}

	for _, child := range children {
		if key, ok := avatars.KeyFromRef(child.AvatarRef); ok {
			if err := s.store.Delete(ctx, key); err != nil {
				log.Printf("Failed to delete avatar object for child %d: %v", child.ID, err)
			}
		}
		if err := s.children.DeleteChild(ctx, child.ID); err != nil {
			return err
		}
	}

	if err := s.activities.DeleteByOwner(ctx, ownerID); err != nil {
		return err
	}

	if err := s.owners.DeleteOwner(ctx, ownerID); err != nil {
		return err
	}

	if err := s.idp.SignOut(ctx, ownerID); err != nil {
		log.Printf("Identity provider sign-out for owner %d failed: %v", ownerID, err)
	}

	if notifyEmail != "" && owner != nil {
		if err := s.notifier.SendAccountDeleted(ctx, notifyEmail, owner.DisplayName); err != nil {
			log.Printf("Failed to send account deletion email: %v", err)
		}
	}

	return nil
}
