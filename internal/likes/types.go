package likes

import (
	product "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

// State is the result of a like or unlike call.
type State struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// LikedPage is a cursor page of the caller's liked products. The cursor
// follows the like rows, so recently liked products come first.
type LikedPage = pagination.Page[product.ProductDTO]
