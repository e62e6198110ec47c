package services

import (
	"context"
	"strings"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	"albumshop/internal/pricing"
	"albumshop/internal/repos"
	"albumshop/internal/validate"
)

const defaultPageSize = 12

type CatalogService struct {
	Artists   *repos.ArtistRepo
	Albums    *repos.AlbumRepo
	Discounts *repos.DiscountRepo
	Now       Clock
}

func NewCatalogService(artists *repos.ArtistRepo, albums *repos.AlbumRepo, discounts *repos.DiscountRepo) *CatalogService {
	return &CatalogService{Artists: artists, Albums: albums, Discounts: discounts}
}

// VersionView is a version with its price as of now.
type VersionView struct {
	domain.AlbumVersion
	pricing.Quote
}

type AlbumView struct {
	domain.Album
	Versions []VersionView `json:"versions"`
}

type ArtistView struct {
	domain.Artist
	Albums []AlbumView `json:"albums"`
}

func pageBounds(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	return pageSize, (page - 1) * pageSize
}

// ListAlbums lists albums that can be bought or preordered, newest first.
func (s *CatalogService) ListAlbums(ctx context.Context, page, pageSize int) ([]AlbumView, error) {
	limit, offset := pageBounds(page, pageSize)
	albums, err := s.Albums.ListAvailable(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Transient(err, "list albums")
	}
	return s.withVersions(ctx, albums)
}

func (s *CatalogService) GetAlbum(ctx context.Context, id string) (AlbumView, error) {
	a, err := s.Albums.Get(ctx, id)
	if err != nil {
		return AlbumView{}, storageErr(err, "album not found", "load album")
	}
	views, err := s.withVersions(ctx, []domain.Album{a})
	if err != nil {
		return AlbumView{}, err
	}
	return views[0], nil
}

// Search matches album titles and artist names.
func (s *CatalogService) Search(ctx context.Context, q string, page, pageSize int) ([]AlbumView, error) {
	q, ok := validate.Q(q)
	if !ok {
		return nil, apperr.InvalidInput("invalid search query").
			WithDetails(map[string]string{"q": "1-50 letters, digits, spaces, hyphens or apostrophes"})
	}
	limit, offset := pageBounds(page, pageSize)
	albums, err := s.Albums.Search(ctx, strings.ToLower(q), limit, offset)
	if err != nil {
		return nil, apperr.Transient(err, "search albums")
	}
	return s.withVersions(ctx, albums)
}

func (s *CatalogService) ListCategories() []string {
	return append([]string(nil), domain.ArtistCategories...)
}

func (s *CatalogService) ArtistsByCategory(ctx context.Context, category string) ([]domain.Artist, error) {
	c, ok := validate.Category(category)
	if !ok {
		return nil, apperr.InvalidInput("unknown artist category")
	}
	out, err := s.Artists.ListByCategory(ctx, c)
	if err != nil {
		return nil, apperr.Transient(err, "list artists")
	}
	return out, nil
}

// GetArtist returns the artist with every album, including sold out ones.
func (s *CatalogService) GetArtist(ctx context.Context, id string) (ArtistView, error) {
	ar, err := s.Artists.Get(ctx, id)
	if err != nil {
		return ArtistView{}, storageErr(err, "artist not found", "load artist")
	}
	albums, err := s.Albums.ListByArtist(ctx, id)
	if err != nil {
		return ArtistView{}, apperr.Transient(err, "list artist albums")
	}
	views, err := s.withVersions(ctx, albums)
	if err != nil {
		return ArtistView{}, err
	}
	return ArtistView{Artist: ar, Albums: views}, nil
}

// withVersions attaches versions and current prices. Versions and discounts
// are each loaded in a single query.
func (s *CatalogService) withVersions(ctx context.Context, albums []domain.Album) ([]AlbumView, error) {
	out := make([]AlbumView, 0, len(albums))
	if len(albums) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID)
	}
	versions, err := s.Albums.Versions(ctx, ids)
	if err != nil {
		return nil, apperr.Transient(err, "load versions")
	}
	byAlbum, err := discountsByAlbum(ctx, s.Discounts, ids)
	if err != nil {
		return nil, apperr.Transient(err, "load discounts")
	}

	now := s.Now.now()
	index := make(map[string]int, len(albums))
	for i, a := range albums {
		index[a.ID] = i
		out = append(out, AlbumView{Album: a, Versions: []VersionView{}})
	}
	for _, v := range versions {
		i, ok := index[v.AlbumID]
		if !ok {
			continue
		}
		q := pricing.Price(albums[i].BasePrice.Decimal, v.PriceDiff.Decimal, byAlbum[v.AlbumID], now)
		out[i].Versions = append(out[i].Versions, VersionView{AlbumVersion: v, Quote: q})
	}
	return out, nil
}
