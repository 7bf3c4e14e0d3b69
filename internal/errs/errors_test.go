package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyMarks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"invariant", Invariantf("nid %d must be negative", 5), IsInvariant},
		{"unsupported", Unsupportedf("target %q", "XML"), IsUnsupported},
		{"configuration", Configurationf("assemblage %d has no columns", -12), IsConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, tt.check(tt.err))

			wrapped := Wrap(tt.err, "outer")
			assert.True(t, tt.check(wrapped), "classification survives Wrap")

			stdWrapped := fmt.Errorf("std: %w", tt.err)
			assert.True(t, tt.check(stdWrapped), "classification survives fmt.Errorf %%w")
		})
	}
}

func TestTaxonomyIsExclusive(t *testing.T) {
	err := Invariantf("leaf has children")

	assert.False(t, IsUnsupported(err))
	assert.False(t, IsConfiguration(err))
	assert.False(t, IsInvariant(nil))
}

func TestMessageCarriesOffendingValue(t *testing.T) {
	err := Unsupportedf("can't handle version type: %s", "WIDGET")
	assert.Contains(t, err.Error(), "WIDGET")
}

func TestWrapConfiguration(t *testing.T) {
	assert.NoError(t, WrapConfiguration(nil, "ignored"))

	base := New("column 2 missing")
	err := WrapConfiguration(base, "assemblage %d", -40)
	assert.True(t, IsConfiguration(err))
	assert.True(t, Is(err, base))
	assert.Contains(t, err.Error(), "assemblage -40")
}
