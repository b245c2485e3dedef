package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHasher struct{ calls int }

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.calls++
	return "hashed:" + plaintext, nil
}

func TestAdminPrepareSaveHashesOnlyWhenModified(t *testing.T) {
	h := &countingHasher{}
	a := &Admin{Email: "admin@example.com"}
	a.SetPassword("Secret@123")
	require.True(t, a.PasswordModified())

	require.NoError(t, a.PrepareSave(h))
	assert.Equal(t, "hashed:Secret@123", a.PasswordHash)
	assert.False(t, a.PasswordModified())

	// a second save must not hash the digest again
	require.NoError(t, a.PrepareSave(h))
	assert.Equal(t, "hashed:Secret@123", a.PasswordHash)
	assert.Equal(t, 1, h.calls)
}

func TestAdminPrepareSaveWithoutPassword(t *testing.T) {
	a := &Admin{Email: "admin@example.com"}
	assert.ErrorIs(t, a.PrepareSave(&countingHasher{}), ErrPasswordNotSet)
}

func TestPagination(t *testing.T) {
	p := PageRequest{Page: 2, Limit: 5}.Normalize()
	assert.Equal(t, 5, p.Offset())
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 12, ItemsPerPage: 5}, NewPagination(p, 12))

	d := PageRequest{Page: 0, Limit: -3}.Normalize()
	assert.Equal(t, PageRequest{Page: DefaultPage, Limit: DefaultLimit}, d)
	assert.Equal(t, 5000, PageRequest{Page: 1, Limit: 5000}.Normalize().Limit)
}

func TestPageBounds(t *testing.T) {
	start, end := PageRequest{Page: 2, Limit: 5}.Bounds(12)
	assert.Equal(t, [2]int{5, 10}, [2]int{start, end})

	start, end = PageRequest{Page: 3, Limit: 5}.Bounds(12)
	assert.Equal(t, [2]int{10, 12}, [2]int{start, end})

	start, end = PageRequest{Page: 9, Limit: 5}.Bounds(12)
	assert.Equal(t, [2]int{12, 12}, [2]int{start, end})

	huge := PageRequest{Page: math.MaxInt, Limit: math.MaxInt}
	assert.Equal(t, math.MaxInt, huge.Offset())
	start, end = huge.Bounds(12)
	assert.Equal(t, [2]int{12, 12}, [2]int{start, end})

	assert.Equal(t, 1, NewPagination(PageRequest{Page: 1, Limit: math.MaxInt}, 12).TotalPages)
	assert.Equal(t, 0, NewPagination(PageRequest{Page: 1, Limit: 10}, 0).TotalPages)

	start, end = PageRequest{Page: 1, Limit: math.MaxInt}.Bounds(12)
	assert.Equal(t, [2]int{0, 12}, [2]int{start, end})
}

func TestEmployeeUpdateApply(t *testing.T) {
	name := "Jane Doe"
	e := &Employee{FullName: "John", Address: "Street 1"}
	u := EmployeeUpdate{FullName: &name}
	assert.False(t, u.IsEmpty())
	u.Apply(e)
	assert.Equal(t, "Jane Doe", e.FullName)
	assert.Equal(t, "Street 1", e.Address)
	assert.True(t, EmployeeUpdate{}.IsEmpty())
}
