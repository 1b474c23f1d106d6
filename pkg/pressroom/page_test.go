package pressroom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func TestPageRequest_Normalize(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		req := pressroom.PageRequest{}.Normalize()
		assert.Equal(t, 1, req.Page)
		assert.Equal(t, pressroom.DefaultPageLimit, req.Limit)
		assert.Equal(t, pressroom.SortDesc, req.SortOrder)
	})

	t.Run("ClampsLimit", func(t *testing.T) {
		req := pressroom.PageRequest{Page: 3, Limit: 5000}.Normalize()
		assert.Equal(t, pressroom.MaxPageLimit, req.Limit)
		assert.Equal(t, 3, req.Page)
	})

	t.Run("RejectsNegativePage", func(t *testing.T) {
		req := pressroom.PageRequest{Page: -2, Limit: -1}.Normalize()
		assert.Equal(t, 1, req.Page)
		assert.Equal(t, pressroom.DefaultPageLimit, req.Limit)
	})

	t.Run("UnknownOrderFallsBack", func(t *testing.T) {
		req := pressroom.PageRequest{SortOrder: "sideways"}.Normalize()
		assert.Equal(t, pressroom.SortDesc, req.SortOrder)
	})
}

func TestPageRequest_Offset(t *testing.T) {
	req := pressroom.PageRequest{Page: 3, Limit: 10}.Normalize()
	assert.Equal(t, 20, req.Offset())

	req = pressroom.PageRequest{Page: 1, Limit: 25}.Normalize()
	assert.Equal(t, 0, req.Offset())
}

func TestNewPage(t *testing.T) {
	req := pressroom.PageRequest{Page: 2, Limit: 10}.Normalize()

	t.Run("CeilTotalPages", func(t *testing.T) {
		page := pressroom.NewPage([]int{1, 2, 3}, 25, req)
		assert.Equal(t, 25, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("ExactMultiple", func(t *testing.T) {
		page := pressroom.NewPage([]int{}, 20, req)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("EmptyResultNeverNil", func(t *testing.T) {
		page := pressroom.NewPage[int](nil, 0, req)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Zero(t, page.TotalPages)
	})
}
