package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-experience/service-reservation/internal/domain/catalog"
)

func TestFindProduct(t *testing.T) {
	p, ok := catalog.FindProduct("Seoul Hanbok Experience")
	require.True(t, ok)
	assert.Equal(t, int64(55000), p.Price.Male)
	assert.Equal(t, int64(65000), p.Price.Female)

	_, ok = catalog.FindProduct("Nonexistent Tour")
	assert.False(t, ok)
}

func TestPackagesReferenceKnownProducts(t *testing.T) {
	for _, pkg := range catalog.Packages() {
		for _, name := range pkg.Products {
			_, ok := catalog.FindProduct(name)
			assert.True(t, ok, "package %q references unknown product %q", pkg.Name, name)
		}
	}
}
