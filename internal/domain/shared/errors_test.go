package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewDomainError(CodeNotFound, "journal 42 not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrAlreadyExists))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("resolve: %w", NewDomainError(CodeConfiguration, "no journal"))
		assert.True(t, errors.Is(err, ErrConfiguration))

		var de *DomainError
		assert.True(t, errors.As(err, &de))
		assert.Equal(t, "no journal", de.Message)
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})
}
