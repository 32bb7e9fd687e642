package nucleus

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobals_RegisterAndGet(t *testing.T) {
	var g Globals[int]

	h := g.Register(42)

	assert.Equal(t, 42, *h.Get())
}

func TestGlobals_DropQueuesDeleteUntilNextUpdate(t *testing.T) {
	var g Globals[string]

	h := g.Register("a")
	assert.Empty(t, g.DeletedItems())

	h.Drop()
	assert.Empty(t, g.DeletedItems(), "drop only queues the delete, Update publishes it")

	g.Update()
	assert.Equal(t, []DeletedItem[string]{{Index: h.Index(), Value: "a"}}, g.DeletedItems())
}

func TestGlobals_DeletedItemVisibleForExactlyOneUpdate(t *testing.T) {
	var g Globals[string]
	h := g.Register("a")
	h.Drop()
	g.Update()

	assert.Equal(t, []DeletedItem[string]{{Index: h.Index(), Value: "a"}}, g.DeletedItems(),
		"still visible the cycle right after the drop's Update")

	g.Update()
	assert.Empty(t, g.DeletedItems(), "gone the cycle after that")
}

func TestGlobals_FreedIndexIsReused(t *testing.T) {
	var g Globals[string]
	h0 := g.Register("a")
	h1 := g.Register("b")
	h2 := g.Register("c")
	assert.Equal(t, 0, h0.Index())
	assert.Equal(t, 1, h1.Index())
	assert.Equal(t, 2, h2.Index())

	h1.Drop()
	g.Update()
	assert.Equal(t, []DeletedItem[string]{{Index: 1, Value: "b"}}, g.DeletedItems())

	g.Update()
	h3 := g.Register("d")

	assert.Equal(t, 1, h3.Index())
	assert.Equal(t, "d", *h3.Get())
}

func TestGlobals_RefSharesLifetimeWithOwner(t *testing.T) {
	var g Globals[int]
	h := g.Register(7)
	ref := h.Ref()

	h.Drop()
	g.Update()
	assert.Empty(t, g.DeletedItems(), "owner's drop alone must not free the slot while ref still holds it")

	ref.Drop()
	g.Update()
	assert.Equal(t, []DeletedItem[int]{{Index: h.Index(), Value: 7}}, g.DeletedItems())
}

func TestGlobalsTable_BitForIsStablePerType(t *testing.T) {
	table := newGlobalsTable()

	bit1 := table.bitFor(reflect.TypeOf(0))
	bit2 := table.bitFor(reflect.TypeOf(0))
	bit3 := table.bitFor(reflect.TypeOf(""))

	assert.Equal(t, bit1, bit2)
	assert.NotEqual(t, bit1, bit3)
}
