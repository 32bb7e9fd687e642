// Profiling:
// go build ./cmd/profile
// go tool pprof -http=":8000" -nodefraction=0.001 ./profile mem.pprof

package main

import (
	"github.com/loomengine/nucleus"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 10000
	numEntities := 1000

	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, numEntities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	c1 := nucleus.FactoryNewComponent[comp1]()
	c2 := nucleus.FactoryNewComponent[comp2]()

	for range rounds {
		app := nucleus.NewApp()
		app.AddSystem(nucleus.SystemDescriptor{
			Name:    "accumulate",
			Action:  nucleus.ActionLabel("accumulate"),
			Include: []nucleus.Component{c1, c2},
			Components: []nucleus.ComponentAccess{
				{Component: c1, Access: nucleus.Write},
				{Component: c2, Access: nucleus.Read},
			},
			Run: func(ctx *nucleus.SystemContext) {
				for ctx.Cursor.Next() {
					a := c1.GetFromCursor(ctx.Cursor)
					b := c2.GetFromCursor(ctx.Cursor)
					a.V += b.V
					a.W += b.W
				}
			},
		})

		for range iters {
			entities, err := app.Storage().NewEntities(numEntities, c1, c2)
			if err != nil {
				panic(err)
			}
			if err := app.Update(); err != nil {
				panic(err)
			}
			if err := app.Storage().DestroyEntities(entities...); err != nil {
				panic(err)
			}
		}
	}
}
