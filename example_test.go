package nucleus_test

import (
	"fmt"

	"github.com/TheBitDrifter/table"
	"github.com/loomengine/nucleus"
)

// Position is a simple component for 2D coordinates.
type Position struct {
	X float64
	Y float64
}

// Velocity is a simple component for 2D movement.
type Velocity struct {
	X float64
	Y float64
}

// Name is a simple component for entity identification.
type Name struct {
	Value string
}

// Example_basic shows entity creation and a position/velocity query.
func Example_basic() {
	schema := table.Factory.NewSchema()
	storage := nucleus.Factory.NewStorage(schema)

	position := nucleus.FactoryNewComponent[Position]()
	velocity := nucleus.FactoryNewComponent[Velocity]()
	name := nucleus.FactoryNewComponent[Name]()

	storage.NewEntities(5, position)
	storage.NewEntities(3, position, velocity)

	entities, _ := storage.NewEntities(1, position, velocity, name)
	nameComp := name.GetFromEntity(entities[0])
	nameComp.Value = "Player"

	pos := position.GetFromEntity(entities[0])
	vel := velocity.GetFromEntity(entities[0])
	pos.X, pos.Y = 10.0, 20.0
	vel.X, vel.Y = 1.0, 2.0

	query := nucleus.Factory.NewQuery()
	queryNode := query.And(position, velocity)
	cursor := nucleus.Factory.NewCursor(queryNode, storage)

	matchCount := 0
	for cursor.Next() {
		matchCount++
	}
	fmt.Printf("Found %d entities with position and velocity\n", matchCount)

	query = nucleus.Factory.NewQuery()
	queryNode = query.And(name)
	cursor = nucleus.Factory.NewCursor(queryNode, storage)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		nme := name.GetFromCursor(cursor)

		pos.X += vel.X
		pos.Y += vel.Y

		fmt.Printf("Updated %s to position (%.1f, %.1f)\n", nme.Value, pos.X, pos.Y)
	}

	// Output:
	// Found 4 entities with position and velocity
	// Updated Player to position (11.0, 22.0)
}

// Example_queries shows the And and Or query operations, plus exclusion
// through a Without clause.
func Example_queries() {
	schema := table.Factory.NewSchema()
	storage := nucleus.Factory.NewStorage(schema)

	position := nucleus.FactoryNewComponent[Position]()
	velocity := nucleus.FactoryNewComponent[Velocity]()
	name := nucleus.FactoryNewComponent[Name]()

	storage.NewEntities(3, position)
	storage.NewEntities(3, position, velocity)
	storage.NewEntities(3, position, name)
	storage.NewEntities(3, position, velocity, name)

	andQuery := nucleus.Factory.NewQuery()
	cursor := nucleus.Factory.NewCursor(andQuery.And(position, velocity), storage)
	fmt.Printf("AND query matched %d entities\n", cursor.TotalMatched())

	orQuery := nucleus.Factory.NewQuery()
	cursor = nucleus.Factory.NewCursor(orQuery.Or(velocity, name), storage)
	fmt.Printf("OR query matched %d entities\n", cursor.TotalMatched())

	notQuery := nucleus.Factory.NewQuery()
	excludeVelocity := nucleus.Factory.NewQuery()
	cursor = nucleus.Factory.NewCursor(
		notQuery.And(position, excludeVelocity.Without(velocity)),
		storage,
	)
	fmt.Printf("NOT query matched %d entities\n", cursor.TotalMatched())

	// Output:
	// AND query matched 6 entities
	// OR query matched 9 entities
	// NOT query matched 6 entities
}

// Example_scheduler shows a system driven through an App: registered with a
// declared Write access to Position, run for one frame.
func Example_scheduler() {
	app := nucleus.NewApp()

	position := nucleus.FactoryNewComponent[Position]()
	velocity := nucleus.FactoryNewComponent[Velocity]()

	app.Storage().NewEntities(1, position, velocity)
	entities, _ := app.Storage().NewEntities(1, position, velocity)
	vel := velocity.GetFromEntity(entities[0])
	vel.X, vel.Y = 2.0, 3.0

	app.AddSystem(nucleus.SystemDescriptor{
		Name:   "movement",
		Action: nucleus.ActionLabel("movement"),
		Components: []nucleus.ComponentAccess{
			{Component: position, Access: nucleus.Write},
			{Component: velocity, Access: nucleus.Read},
		},
		Include: []nucleus.Component{position, velocity},
		Run: func(ctx *nucleus.SystemContext) {
			for ctx.Cursor.Next() {
				pos := position.GetFromCursor(ctx.Cursor)
				vel := velocity.GetFromCursor(ctx.Cursor)
				pos.X += vel.X
				pos.Y += vel.Y
			}
		},
	})

	if err := app.Update(); err != nil {
		fmt.Println("update failed:", err)
		return
	}

	query := nucleus.Factory.NewQuery()
	cursor := nucleus.Factory.NewCursor(query.And(position, velocity), app.Storage())
	total := 0.0
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		total += pos.X
	}
	fmt.Printf("total X after one frame: %.1f\n", total)

	// Output:
	// total X after one frame: 2.0
}

