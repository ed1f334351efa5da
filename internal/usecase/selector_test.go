package usecase

import (
	"testing"

	"github.com/arbilens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_AssignDefaultsToCheapest(t *testing.T) {
	s := NewSelector()

	sel := s.Assign("B01", domain.OfferSet{offer("StoreB", "11.50"), offer("StoreA", "12.00")})

	assert.Equal(t, 0, sel.Index)
	_, chosen, ok := s.Selected("B01")
	require.True(t, ok)
	require.NotNil(t, chosen)
	assert.Equal(t, "StoreB", chosen.Store)
}

func TestSelector_AssignEmptyMeansNoSelection(t *testing.T) {
	s := NewSelector()

	sel := s.Assign("B02", domain.OfferSet{})

	assert.True(t, sel.None())
	selection, chosen, ok := s.Selected("B02")
	assert.True(t, ok)
	assert.Nil(t, chosen)
	assert.Equal(t, domain.NoSelection, selection.Index)
}

func TestSelector_Select(t *testing.T) {
	offers := domain.OfferSet{offer("StoreB", "11.50"), offer("StoreA", "12.00")}

	tests := []struct {
		name      string
		index     int
		wantErr   error
		wantIndex int
	}{
		{name: "second offer", index: 1, wantIndex: 1},
		{name: "first offer", index: 0, wantIndex: 0},
		{name: "negative index", index: -1, wantErr: domain.ErrInvalidSelection, wantIndex: 1},
		{name: "index equal to length", index: 2, wantErr: domain.ErrInvalidSelection, wantIndex: 1},
		{name: "far out of range", index: 99, wantErr: domain.ErrInvalidSelection, wantIndex: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector()
			s.Assign("B03", offers)
			_, err := s.Select("B03", 1)
			require.NoError(t, err)

			_, err = s.Select("B03", tt.index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			selection, _, _ := s.Selected("B03")
			assert.Equal(t, tt.wantIndex, selection.Index)
		})
	}
}

func TestSelector_SelectOnEmptySetFails(t *testing.T) {
	s := NewSelector()
	s.Assign("B04", nil)

	_, err := s.Select("B04", 0)

	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	selection, _, _ := s.Selected("B04")
	assert.True(t, selection.None())
}

func TestSelector_UnknownIdentifier(t *testing.T) {
	s := NewSelector()

	_, err := s.Select("missing", 0)
	assert.ErrorIs(t, err, domain.ErrRowNotFound)

	_, _, ok := s.Selected("missing")
	assert.False(t, ok)
}

func TestSelector_ReassignResetsChoice(t *testing.T) {
	s := NewSelector()
	offers := domain.OfferSet{offer("StoreB", "11.50"), offer("StoreA", "12.00")}
	s.Assign("B05", offers)
	_, err := s.Select("B05", 1)
	require.NoError(t, err)

	s.Assign("B05", offers)

	selection, _, _ := s.Selected("B05")
	assert.Equal(t, 0, selection.Index)
}
