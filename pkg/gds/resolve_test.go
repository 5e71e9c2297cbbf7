package gds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refLibrary(structures ...*Structure) *Library {
	return &Library{Name: "L", Version: 600, Structures: structures}
}

func sref(name string) *StructRef {
	return &StructRef{Name: name, Transform: IdentityTransform()}
}

func TestResolveWellFormedHierarchy(t *testing.T) {
	lib := refLibrary(
		&Structure{Name: "TOP", Elements: []Element{sref("MID"), sref("LEAF")}},
		&Structure{Name: "MID", Elements: []Element{sref("LEAF")}},
		&Structure{Name: "LEAF"},
	)
	res, err := Resolve(lib, Strict)
	require.NoError(t, err)
	assert.Empty(t, res.Dangling)
	assert.Empty(t, res.Cycles)
	assert.Equal(t, []string{"TOP"}, res.Roots)
	assert.Same(t, lib.Structures[2], res.Table["LEAF"])
}

func TestResolveMutualReferenceCycle(t *testing.T) {
	lib := refLibrary(
		&Structure{Name: "A", Elements: []Element{sref("B")}},
		&Structure{Name: "B", Elements: []Element{sref("A")}},
	)
	res, err := Resolve(lib, Permissive)
	require.ErrorIs(t, err, ErrReferenceCycle)
	require.Len(t, res.Cycles, 1)
	assert.Equal(t, []string{"A", "B", "A"}, res.Cycles[0])
}

func TestResolveSelfReference(t *testing.T) {
	lib := refLibrary(
		&Structure{Name: "A", Elements: []Element{sref("A")}},
	)
	res, err := Resolve(lib, Permissive)
	require.ErrorIs(t, err, ErrReferenceCycle)
	require.Len(t, res.Cycles, 1)
	assert.Equal(t, []string{"A", "A"}, res.Cycles[0])
}

func TestResolveDanglingStrict(t *testing.T) {
	lib := refLibrary(
		&Structure{Name: "TOP", Elements: []Element{sref("C")}},
	)
	res, err := Resolve(lib, Strict)
	require.ErrorIs(t, err, ErrDanglingReference)
	require.Len(t, res.Dangling, 1)
	assert.Equal(t, Dangling{From: "TOP", To: "C"}, res.Dangling[0])
}

func TestResolveDanglingPermissive(t *testing.T) {
	lib := refLibrary(
		&Structure{Name: "TOP", Elements: []Element{sref("C")}},
	)
	res, err := Resolve(lib, Permissive)
	require.NoError(t, err)
	require.Len(t, res.Dangling, 1)
	assert.Equal(t, "C", res.Dangling[0].To)
}

func TestResolveCollectsAllDiagnostics(t *testing.T) {
	// One pass reports every dangling reference and the cycle, not
	// just the first problem found.
	lib := refLibrary(
		&Structure{Name: "A", Elements: []Element{sref("B"), sref("GONE1")}},
		&Structure{Name: "B", Elements: []Element{sref("A"), &ArrayRef{
			Name: "GONE2", Transform: IdentityTransform(),
			Cols: 2, Rows: 2, ColExtent: Point{10, 0}, RowExtent: Point{0, 10},
		}}},
	)
	res, err := Resolve(lib, Strict)
	require.ErrorIs(t, err, ErrReferenceCycle)
	require.ErrorIs(t, err, ErrDanglingReference)
	assert.Len(t, res.Dangling, 2)
	assert.Len(t, res.Cycles, 1)
}

func TestResolveCycleDeduplicated(t *testing.T) {
	// The same cycle reached from two different roots is reported once.
	lib := refLibrary(
		&Structure{Name: "R1", Elements: []Element{sref("A")}},
		&Structure{Name: "R2", Elements: []Element{sref("B")}},
		&Structure{Name: "A", Elements: []Element{sref("B")}},
		&Structure{Name: "B", Elements: []Element{sref("A")}},
	)
	res, err := Resolve(lib, Permissive)
	require.ErrorIs(t, err, ErrReferenceCycle)
	assert.Len(t, res.Cycles, 1)
}

func TestResolveDoesNotMutateLibrary(t *testing.T) {
	lib := refLibrary(
		&Structure{Name: "A", Elements: []Element{sref("MISSING")}},
	)
	_, err := Resolve(lib, Permissive)
	require.NoError(t, err)
	require.Len(t, lib.Structures, 1)
	assert.Equal(t, "MISSING", lib.Structures[0].Elements[0].(*StructRef).Name)
}
