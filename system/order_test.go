package system_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/lodestar-engine/lodestar/system"
	"github.com/lodestar-engine/lodestar/world"
)

var callLog []string

func recordA(*world.World) error { callLog = append(callLog, "a"); return nil }
func recordB(*world.World) error { callLog = append(callLog, "b"); return nil }
func recordC(*world.World) error { callLog = append(callLog, "c"); return nil }
func failing(*world.World) error { callLog = append(callLog, "fail"); return eris.New("bad frame") }

func runOrder(t *testing.T, order system.Order[system.Frame]) error {
	t.Helper()
	w := world.New(zerolog.Nop())
	return system.Run(order, zerolog.Nop(), func(sys system.Frame, _ zerolog.Logger) error {
		return sys(w)
	})
}

func TestAfterBuildsInsertionOrder(t *testing.T) {
	callLog = nil
	order := system.New[system.Frame](recordA).After(recordB).After(recordC)

	assert.NilError(t, runOrder(t, order))
	assert.DeepEqual(t, callLog, []string{"a", "b", "c"})
}

func TestChainMatchesAfter(t *testing.T) {
	chained := system.Chain[system.Frame](recordA, recordB, recordC)
	fluent := system.New[system.Frame](recordA).After(recordB).After(recordC)
	assert.DeepEqual(t, chained.Names(), fluent.Names())
}

func TestAfterDoesNotMutateReceiver(t *testing.T) {
	base := system.New[system.Frame](recordA)
	extended := base.After(recordB)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())
}

func TestExtendConcatenates(t *testing.T) {
	callLog = nil
	first := system.Chain[system.Frame](recordA, recordB)
	second := system.New[system.Frame](recordC)

	assert.NilError(t, runOrder(t, first.Extend(second)))
	assert.DeepEqual(t, callLog, []string{"a", "b", "c"})
}

func TestExtendInPlace(t *testing.T) {
	order := system.Empty[system.Frame]()
	order.ExtendInPlace(system.Chain[system.Frame](recordA, recordB))
	order.ExtendInPlace(system.New[system.Frame](recordC))
	assert.Equal(t, 3, order.Len())
}

func TestRunStopsAtFirstError(t *testing.T) {
	callLog = nil
	order := system.Chain[system.Frame](recordA, failing, recordC)

	err := runOrder(t, order)
	assert.Assert(t, err != nil)
	// recordC never ran, recordA was not rolled back.
	assert.DeepEqual(t, callLog, []string{"a", "fail"})
	assert.ErrorContains(t, err, "generated an error")
}

func TestNameDerivesFunctionSymbol(t *testing.T) {
	assert.Assert(t, len(system.Name(recordA)) > 0)
	names := system.Chain[system.Frame](recordA, recordB).Names()
	assert.Equal(t, 2, len(names))
	assert.Assert(t, names[0] != names[1])
}
