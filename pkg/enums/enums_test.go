package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole(" Seller ")
	require.NoError(t, err)
	assert.Equal(t, UserRoleSeller, role)
	assert.True(t, role.IsValid())

	_, err = ParseUserRole("admin")
	assert.Error(t, err)
	assert.False(t, UserRole("admin").IsValid())
}

func TestParseAuthProvider(t *testing.T) {
	provider, err := ParseAuthProvider("google")
	require.NoError(t, err)
	assert.Equal(t, AuthProviderGoogle, provider)

	_, err = ParseAuthProvider("manually")
	assert.Error(t, err)
}

func TestParseTaxonomyKind(t *testing.T) {
	kind, err := ParseTaxonomyKind("subcategory")
	require.NoError(t, err)
	assert.Equal(t, TaxonomyKindSubcategory, kind)
	assert.Equal(t, "subcategory", kind.String())

	_, err = ParseTaxonomyKind("Category")
	assert.Error(t, err)
}
