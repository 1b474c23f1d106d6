package pressroom_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func TestValidSlug(t *testing.T) {
	valid := []string{"a", "hello-world", "post-2024", "x1-y2-z3"}
	for _, s := range valid {
		assert.True(t, pressroom.ValidSlug(s), "%q should be valid", s)
	}

	invalid := []string{"", "Hello", "two--dashes", "-leading", "trailing-", "with space", "unicode-ü"}
	for _, s := range invalid {
		assert.False(t, pressroom.ValidSlug(s), "%q should be invalid", s)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, pressroom.ValidEmail("user@example.com"))
	assert.True(t, pressroom.ValidEmail("first.last+tag@sub.example.co"))

	assert.False(t, pressroom.ValidEmail(""))
	assert.False(t, pressroom.ValidEmail("no-at-sign"))
	assert.False(t, pressroom.ValidEmail("two@@example.com"))
	assert.False(t, pressroom.ValidEmail("spaces in@example.com"))
}

func TestValidateNewReview(t *testing.T) {
	review := &pressroom.Review{AssetID: uuid.New(), UserID: uuid.New(), Score: 3}
	assert.NoError(t, pressroom.ValidateNewReview(review))

	err := pressroom.ValidateNewReview(&pressroom.Review{AssetID: uuid.New(), Score: 0})
	var ve *pressroom.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "score", ve.Field)

	err = pressroom.ValidateNewReview(&pressroom.Review{Score: 3})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "asset_id", ve.Field)
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("StoreUnavailableMatchesSentinel", func(t *testing.T) {
		err := &pressroom.StoreUnavailableError{Op: "list", Err: errors.New("dial tcp: refused")}
		assert.ErrorIs(t, err, pressroom.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, pressroom.ErrNotFound)
		assert.Contains(t, err.Error(), "list")
	})

	t.Run("ValidationDetection", func(t *testing.T) {
		err := error(&pressroom.ValidationError{Field: "slug", Reason: "already exists"})
		assert.True(t, pressroom.IsValidation(err))
		assert.False(t, pressroom.IsValidation(pressroom.ErrNotFound))
	})

	t.Run("InitializationUnwraps", func(t *testing.T) {
		cause := errors.New("bad credentials")
		err := &pressroom.InitializationError{Err: cause}
		assert.ErrorIs(t, err, cause)
	})
}

func TestFoldForSearch(t *testing.T) {
	assert.Equal(t, "gold outlook", pressroom.FoldForSearch("GoLd OutLook"))
	assert.Equal(t, "", pressroom.FoldForSearch(""))
}
