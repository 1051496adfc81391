package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("BAZAAR_TEST_VALUE", "   ")
	assert.Equal(t, "fallback", Get("BAZAAR_TEST_VALUE", "fallback"))

	t.Setenv("BAZAAR_TEST_VALUE", "set")
	assert.Equal(t, "set", Get("BAZAAR_TEST_VALUE", "fallback"))
}

func TestBool(t *testing.T) {
	t.Setenv("BAZAAR_TEST_FLAG", "true")
	assert.True(t, Bool("BAZAAR_TEST_FLAG", false))

	t.Setenv("BAZAAR_TEST_FLAG", "nope")
	assert.True(t, Bool("BAZAAR_TEST_FLAG", true))

	t.Setenv("BAZAAR_TEST_FLAG", "")
	assert.False(t, Bool("BAZAAR_TEST_FLAG", false))
}
