package eventbus

import (
	"github.com/annel0/voxel-sandbox/internal/world"
)

// SourceSim имя источника событий симуляции.
const SourceSim = "sim"

// Типы событий изменения мира.
var (
	TypeBlockPlaced  = world.ChangePlaced.String()
	TypeBlockRemoved = world.ChangeRemoved.String()
)

// BlockChangePayload полезная нагрузка событий block.placed и block.removed.
type BlockChangePayload struct {
	Block world.Block `json:"block"`
	Frame uint64      `json:"frame"`
}

// NewChangeEnvelope упаковывает изменение мира в событие шины.
func NewChangeEnvelope(change world.Change) (*Envelope, error) {
	ev, err := NewEnvelope(SourceSim, change.Kind.String(), BlockChangePayload{
		Block: change.Block,
		Frame: change.Frame,
	})
	if err != nil {
		return nil, err
	}
	ev.Frame = change.Frame
	ev.Metadata = map[string]string{"block_type": change.Block.Type.String()}
	return ev, nil
}
