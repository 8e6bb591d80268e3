package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaminalder/voronoi-territory/internal/geom"
)

func TestAccumulate(t *testing.T) {
	b := geom.Bounds(10, 10)
	cells := geom.Subdivision{
		{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(5, 10), geom.Pt(0, 10)},
		{geom.Pt(5, 0), geom.Pt(10, 0), geom.Pt(10, 4), geom.Pt(5, 4)},
		nil,
		{geom.Pt(5, 4), geom.Pt(10, 4), geom.Pt(10, 10), geom.Pt(5, 10)},
	}
	owners := []Player{Green, Red, Red, Green}

	s := Accumulate(cells, func(i int) Player { return owners[i] }, b)
	assert.InDelta(t, 80, s.Area[Green], 1e-12)
	assert.InDelta(t, 20, s.Area[Red], 1e-12)
	assert.InDelta(t, 80, s.Percent[Green], 1e-12)
	assert.InDelta(t, 20, s.Percent[Red], 1e-12)
	assert.Equal(t, Green, s.Leader())
}

func TestAccumulateEmpty(t *testing.T) {
	s := Accumulate(nil, func(int) Player { return NoPlayer }, geom.Bounds(3, 3))
	assert.Equal(t, map[Player]float64{Green: 0, Red: 0}, s.Area)
	assert.Equal(t, map[Player]float64{Green: 0, Red: 0}, s.Percent)
	assert.Equal(t, NoPlayer, s.Leader())
}

func TestScoreDisplayRounds(t *testing.T) {
	s := Score{Percent: map[Player]float64{Green: 33.33333, Red: 66.666666}}
	assert.Equal(t, "33.33", s.Display(Green))
	assert.Equal(t, "66.67", s.Display(Red))
	assert.Equal(t, Red, s.Leader())
}

func TestPlayerHelpers(t *testing.T) {
	assert.Equal(t, Red, Green.Other())
	assert.Equal(t, Green, Red.Other())
	assert.Equal(t, NoPlayer, NoPlayer.Other())
	for _, p := range Players {
		got, err := ParsePlayer(p.String())
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePlayer("blue")
	assert.Error(t, err)
	assert.Equal(t, "in_progress", PhaseInProgress.String())
}
