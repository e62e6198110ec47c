package domain

import "github.com/shopspring/decimal"

// Artist categories offered by the storefront.
const (
	CategoryFemaleGroup = "female_group"
	CategoryMaleGroup   = "male_group"
	CategorySolo        = "solo"
)

// ArtistCategories lists categories in display order.
var ArtistCategories = []string{CategoryFemaleGroup, CategoryMaleGroup, CategorySolo}

// Album stock states.
const (
	AlbumInStock    = "in_stock"
	AlbumPreorder   = "preorder"
	AlbumOutOfStock = "out_of_stock"
)

type Artist struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Category  string `db:"category" json:"category"` // female_group | male_group | solo
	ImageURL  string `db:"image_url" json:"image_url,omitempty"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type Album struct {
	ID           string `db:"id" json:"id"`
	ArtistID     string `db:"artist_id" json:"artist_id"`
	ArtistName   string `db:"artist_name" json:"artist_name,omitempty"`
	Title        string `db:"title" json:"title"`
	Description  string `db:"description" json:"description,omitempty"`
	BasePrice    Money  `db:"base_price" json:"base_price"`
	Status       string `db:"status" json:"status"` // in_stock | preorder | out_of_stock
	ReleaseDate  string `db:"release_date" json:"release_date,omitempty"`
	MainImageURL string `db:"main_image_url" json:"main_image_url,omitempty"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// AlbumVersion is the sellable unit. Stock is tracked here.
type AlbumVersion struct {
	ID               string `db:"id" json:"id"`
	AlbumID          string `db:"album_id" json:"album_id"`
	VersionName      string `db:"version_name" json:"version_name"`
	PriceDiff        Money  `db:"price_diff" json:"price_diff"`
	PackagingDetails string `db:"packaging_details" json:"packaging_details,omitempty"`
	StockQuantity    int    `db:"stock_quantity" json:"stock_quantity"`
	IsLimited        bool   `db:"is_limited" json:"is_limited"`
}

type Discount struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Percent   decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	StartDate string          `db:"start_date" json:"start_date"` // YYYY-MM-DD
	EndDate   string          `db:"end_date" json:"end_date"`
	IsActive  bool            `db:"is_active" json:"is_active"`
}

// AlbumDiscount is a discount row joined with the album it is linked to.
type AlbumDiscount struct {
	AlbumID string `db:"album_id"`
	Discount
}

type Address struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"-"`
	Label      string `db:"label" json:"label,omitempty"`
	Line1      string `db:"line1" json:"line1"`
	Line2      string `db:"line2" json:"line2,omitempty"`
	City       string `db:"city" json:"city"`
	PostalCode string `db:"postal_code" json:"postal_code"`
	Country    string `db:"country" json:"country"`
	IsDefault  bool   `db:"is_default" json:"is_default"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}
