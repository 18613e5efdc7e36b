package itamservice

import (
	"context"

	"github.com/starford/itam/internal/models"
)

const resAssets = "assets"

// ListAssets returns every asset. Listing is public.
func (s *Service) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return s.db.ListAssets(ctx)
}

// GetAsset returns one asset.
func (s *Service) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	return s.db.GetAsset(ctx, id)
}

// CreateAsset validates and stores a new asset.
func (s *Service) CreateAsset(ctx context.Context, in models.AssetInput) (*models.Asset, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	a, err := s.db.CreateAsset(ctx, in)
	if err != nil {
		return nil, err
	}
	s.onChange(resAssets, ActionCreated, a.ID)
	return a, nil
}

// UpdateAsset replaces an asset.
func (s *Service) UpdateAsset(ctx context.Context, id int64, in models.AssetInput) (*models.Asset, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	a, err := s.db.UpdateAsset(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.onChange(resAssets, ActionUpdated, a.ID)
	return a, nil
}

// DeleteAsset removes an asset.
func (s *Service) DeleteAsset(ctx context.Context, id int64) error {
	if _, err := caller(ctx); err != nil {
		return err
	}
	if err := s.db.DeleteAsset(ctx, id); err != nil {
		return err
	}
	s.onChange(resAssets, ActionDeleted, id)
	return nil
}

// ImportAsset upserts an asset from an inventory manifest.
func (s *Service) ImportAsset(ctx context.Context, in models.AssetInput) (*models.Asset, bool, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, false, invalid(err)
	}
	a, created, err := s.db.UpsertAsset(ctx, in)
	if err != nil {
		return nil, false, err
	}
	action := ActionUpdated
	if created {
		action = ActionCreated
	}
	s.onChange(resAssets, action, a.ID)
	return a, created, nil
}
