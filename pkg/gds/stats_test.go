package gds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	got := Stats(fullLibrary())

	assert.Equal(t, 7, got.Elements)
	assert.Equal(t, 2, got.References)
	assert.Equal(t, []int16{2, 3, 5, 10, 63}, got.Layers)

	assert.Equal(t, []StructureStats{
		{Name: "VIA", Elements: 2},
		{Name: "CORE", Elements: 5, References: 2},
	}, got.Structures)
}
