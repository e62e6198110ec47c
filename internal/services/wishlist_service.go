package services

import (
	"context"

	"albumshop/internal/apperr"
	"albumshop/internal/repos"
)

type WishlistService struct {
	Repo   *repos.WishlistRepo
	Albums *repos.AlbumRepo
}

func NewWishlistService(r *repos.WishlistRepo, albums *repos.AlbumRepo) *WishlistService {
	return &WishlistService{Repo: r, Albums: albums}
}

func (s *WishlistService) Save(ctx context.Context, userID, albumID string) error {
	if _, err := s.Albums.Get(ctx, albumID); err != nil {
		return storageErr(err, "album not found", "load album")
	}
	added, err := s.Repo.Add(ctx, userID, albumID)
	if err != nil {
		return apperr.Transient(err, "add to wishlist")
	}
	if !added {
		return apperr.New(apperr.KindConflict, "album already in wishlist")
	}
	return nil
}

func (s *WishlistService) Unsave(ctx context.Context, userID, albumID string) error {
	removed, err := s.Repo.Remove(ctx, userID, albumID)
	if err != nil {
		return apperr.Transient(err, "remove from wishlist")
	}
	if !removed {
		return apperr.NotFound("album not in wishlist")
	}
	return nil
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]repos.WishlistRow, error) {
	rows, err := s.Repo.List(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "list wishlist")
	}
	return rows, nil
}
