/*
Package nucleus is the runtime core of the Loom engine: an archetype-based
Entity-Component-System store, a DAG-scheduled system runner, a deferred
update queue, and a globals registry for engine-shared singleton resources.

Core Concepts:

  - Entity: a dense, generation-checked index naming a live aggregate of
    components, with an optional parent and ordered children.
  - Component: a data attribute attached to at most one entity at a time.
  - Archetype: the set of entities sharing an exact component-type schema,
    stored as parallel dense arrays for cache-friendly iteration.
  - Query: a composable And/Or/Not/With/Without filter over archetypes.
  - System: a function registered against an Action, with a statically
    computed component/global access set used to schedule it safely
    alongside other systems.
  - Action: a named DAG node grouping systems that share predecessors.
  - Glob / Globals: a lifetime-tracked slot in a per-type shared registry,
    used by engine collaborators (graphics, physics, input) to share mutable
    singleton resources across systems without a direct back-reference.

Basic Usage:

	schema := table.Factory.NewSchema()
	storage := nucleus.Factory.NewStorage(schema)

	position := nucleus.FactoryNewComponent[Position]()
	velocity := nucleus.FactoryNewComponent[Velocity]()

	entities, _ := storage.NewEntities(100, position, velocity)

	query := nucleus.Factory.NewQuery()
	queryNode := query.And(position, velocity)
	cursor := nucleus.Factory.NewCursor(queryNode, storage)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Systems, actions and globals are driven through an App:

	nucleus.Config.SetLogLevel(logrus.InfoLevel)
	app := nucleus.NewApp()
	app.AddSystem(nucleus.SystemDescriptor{
		Name:       "movement",
		Action:     nucleus.ActionLabel("movement"),
		Components: []nucleus.ComponentAccess{{Component: position, Access: nucleus.Write}},
		Run:        movementSystem,
	})
	app.Update()

nucleus is the ECS core of the Loom Framework but also works standalone.
*/
package nucleus
