package nucleus

import "github.com/TheBitDrifter/table"

type archetypeID uint32

// Archetype identifies the set of entities sharing an exact component-type
// schema, backed by a dense table.Table.
type Archetype interface {
	ID() uint32
	Table() table.Table
}

// ArchetypeImpl is the concrete archetype type. It is exported as an alias
// so storage/cursor code can hand out and range over the concrete type
// directly instead of paying an interface-dispatch cost on the hot query
// path, while callers that only need identity/table access still use
// Archetype.
type ArchetypeImpl = archetype

type archetype struct {
	id    archetypeID
	table table.Table
}

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, id archetypeID, components ...Component) (archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, comp := range components {
		elementTypes[i] = comp
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return archetype{}, err
	}
	return archetype{
		table: tbl,
		id:    id,
	}, nil
}

func (a archetype) ID() uint32 {
	return uint32(a.id)
}

func (a archetype) Table() table.Table {
	return a.table
}
