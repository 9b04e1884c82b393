package service

import (
	"context"
	"fmt"
	"log"

	"labelquest/internal/domain/model"
	"labelquest/internal/domain/repository"
)

// AdminInvalidator is the invalidation hook of the admin directory.
type AdminInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AdminService covers the moderation console: image validation, soft
// deletes, account locking and admin promotion.
type AdminService struct {
	userRepo  repository.UserRepository
	imageRepo repository.ImageRepository
	directory AdminInvalidator
}

func NewAdminService(
	userRepo repository.UserRepository,
	imageRepo repository.ImageRepository,
	directory AdminInvalidator,
) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		imageRepo: imageRepo,
		directory: directory,
	}
}

func (s *AdminService) ListPendingImages(ctx context.Context) ([]model.Image, error) {
	return s.imageRepo.ListPending(ctx)
}

// SetImageValidated flips public visibility of an upload.
func (s *AdminService) SetImageValidated(ctx context.Context, imageID string, validated bool) error {
	if err := s.imageRepo.SetValidated(ctx, imageID, validated); err != nil {
		return fmt.Errorf("failed to set image validation: %w", err)
	}
	return nil
}

// SetImageActive soft-deletes or restores an upload.
func (s *AdminService) SetImageActive(ctx context.Context, imageID string, active bool) error {
	if err := s.imageRepo.SetActive(ctx, imageID, active); err != nil {
		return fmt.Errorf("failed to set image active flag: %w", err)
	}
	return nil
}

func (s *AdminService) SetUserLocked(ctx context.Context, userID string, locked bool) error {
	if err := s.userRepo.SetLocked(ctx, userID, locked); err != nil {
		return fmt.Errorf("failed to set user lock: %w", err)
	}
	return nil
}

// SetUserAdmin changes the role and invalidates the admin directory so the
// ranking exclusion set picks the change up immediately instead of waiting
// out the TTL.
func (s *AdminService) SetUserAdmin(ctx context.Context, userID string, admin bool) error {
	if err := s.userRepo.SetAdmin(ctx, userID, admin); err != nil {
		return fmt.Errorf("failed to set user role: %w", err)
	}
	if err := s.directory.Invalidate(ctx); err != nil {
		// The TTL bounds the staleness; log and move on.
		log.Printf("WARN: failed to invalidate admin directory after role change: %v", err)
	}
	return nil
}
