package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounds(t *testing.T) {
	t.Run("FullPages", func(t *testing.T) {
		p := Pagination{Page: 1, PerPage: 10}
		low, high := p.Bounds(25)
		assert.Equal(t, 0, low)
		assert.Equal(t, 10, high)

		p.Page = 3
		low, high = p.Bounds(25)
		assert.Equal(t, 20, low)
		assert.Equal(t, 25, high)
	})

	t.Run("PageBeyondTotal", func(t *testing.T) {
		p := Pagination{Page: 9, PerPage: 10}
		low, high := p.Bounds(25)
		assert.Equal(t, low, high)
	})

	t.Run("SumOfPagesEqualsTotal", func(t *testing.T) {
		total := 103
		perPage := 20
		covered := 0
		for page := 1; ; page++ {
			low, high := (Pagination{Page: page, PerPage: perPage}).Bounds(total)
			if low == high {
				break
			}
			covered += high - low
		}
		assert.Equal(t, total, covered)
	})
}

func TestInfo(t *testing.T) {
	p := Pagination{Page: 2, PerPage: 20}
	info := p.Info(45)
	assert.Equal(t, 45, info.Total)
	assert.Equal(t, 3, info.TotalPages)

	assert.Equal(t, 0, p.Info(0).TotalPages)
}

func TestNormalize(t *testing.T) {
	p := (Pagination{Page: 0, PerPage: 0}).Normalize(20)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}
