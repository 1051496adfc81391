package taxonomy

import (
	"errors"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

var (
	// ErrTaxonomyNotFound means no category or subcategory matched a name.
	ErrTaxonomyNotFound = pkgerrors.New(pkgerrors.CodeValidation, "category or subcategory not found")

	// ErrNodeMissing means a counter write targeted a node that no longer exists.
	ErrNodeMissing = errors.New("taxonomy node missing")

	// ErrAmbiguousPlacement means a stored product row has both columns set.
	ErrAmbiguousPlacement = errors.New("product has both category_id and subcategory_id")
)
