package replay

import (
	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// NewWorld восстанавливает исходный мир записи
func (h Header) NewWorld() *world.Store {
	store := world.NewStore()
	world.NewGeneratorFromParams(h.World).Fill(store)
	return store
}

// NewState восстанавливает мир и контекст симуляции в том виде, в каком
// началась запись
func (h Header) NewState() *sim.State {
	return sim.NewState(h.NewWorld(), h.Sim)
}

// Summary содержит итог воспроизведения
type Summary struct {
	Frames  int
	Placed  int
	Removed int
}

// Replay прогоняет кадры через sim.Step и возвращает итог
func Replay(state *sim.State, frames []Frame) Summary {
	var summary Summary
	for _, f := range frames {
		result := sim.Step(state, f.Input, f.DT)
		summary.Frames++
		for _, change := range result.Changes {
			switch change.Kind {
			case world.ChangePlaced:
				summary.Placed++
			case world.ChangeRemoved:
				summary.Removed++
			}
		}
	}
	return summary
}
