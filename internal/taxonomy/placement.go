// Package taxonomy keeps category and subcategory product counters consistent
// with the product population. Every function takes an explicit transaction
// handle so counter writes commit or roll back with the product write that
// triggered them.
package taxonomy

import (
	"fmt"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/google/uuid"
)

// Placement is the single taxonomy node a product hangs off. The zero value
// means "unplaced", which only legacy rows can be.
type Placement struct {
	kind     enums.TaxonomyKind
	id       uuid.UUID
	parentID uuid.UUID
}

// InCategory places a product directly under a category.
func InCategory(id uuid.UUID) Placement {
	return Placement{kind: enums.TaxonomyKindCategory, id: id}
}

// InSubcategory places a product under a subcategory whose parent is parentID.
func InSubcategory(id, parentID uuid.UUID) Placement {
	return Placement{kind: enums.TaxonomyKindSubcategory, id: id, parentID: parentID}
}

func (p Placement) Kind() enums.TaxonomyKind { return p.kind }

// ID is the id of the node itself.
func (p Placement) ID() uuid.UUID { return p.id }

// CategoryID is the category whose total includes this node.
func (p Placement) CategoryID() uuid.UUID {
	if p.kind == enums.TaxonomyKindSubcategory {
		return p.parentID
	}
	return p.id
}

func (p Placement) IsZero() bool { return p.kind == "" }

func (p Placement) IsSubcategory() bool { return p.kind == enums.TaxonomyKindSubcategory }

// SameNode reports whether both placements point at the same taxonomy node.
func (p Placement) SameNode(other Placement) bool {
	return p.kind == other.kind && p.id == other.id
}

// Columns converts the placement to the nullable column pair stored on
// products. Exactly one return value is non-nil for a placed product.
func (p Placement) Columns() (categoryID, subcategoryID *uuid.UUID) {
	id := p.id
	switch p.kind {
	case enums.TaxonomyKindCategory:
		return &id, nil
	case enums.TaxonomyKindSubcategory:
		return nil, &id
	default:
		return nil, nil
	}
}

func (p Placement) String() string {
	switch p.kind {
	case enums.TaxonomyKindCategory:
		return fmt.Sprintf("category(%s)", p.id)
	case enums.TaxonomyKindSubcategory:
		return fmt.Sprintf("subcategory(%s, parent=%s)", p.id, p.parentID)
	default:
		return "unplaced"
	}
}
