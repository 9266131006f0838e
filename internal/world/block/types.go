package block

import (
	"fmt"
	"strings"
)

// BlockType представляет тип блока
type BlockType uint8

// Константы типов блоков. Порядок задаёт порядок перебора колесом мыши.
const (
	GrassBlock BlockType = iota // 0
	DirtBlock                   // 1
	StoneBlock                  // 2
	WoodBlock                   // 3
	LeavesBlock                 // 4
	SandBlock                   // 5
)

// Info описывает тип блока для интерфейса
type Info struct {
	Name  string
	Color uint32 // RGB, 0xRRGGBB
}

var (
	registry = make(map[BlockType]Info)
	order    []BlockType
)

// Register добавляет тип блока в регистр
func Register(t BlockType, info Info) {
	if _, exists := registry[t]; !exists {
		order = append(order, t)
	}
	registry[t] = info
}

func init() {
	Register(GrassBlock, Info{Name: "grass", Color: 0x85cc60})
	Register(DirtBlock, Info{Name: "dirt", Color: 0x9b7653})
	Register(StoneBlock, Info{Name: "stone", Color: 0x808080})
	Register(WoodBlock, Info{Name: "wood", Color: 0xab855f})
	Register(LeavesBlock, Info{Name: "leaves", Color: 0x4caf50})
	Register(SandBlock, Info{Name: "sand", Color: 0xf4a460})
}

// Get возвращает описание типа
func Get(t BlockType) (Info, bool) {
	info, exists := registry[t]
	return info, exists
}

// IsValid проверяет, зарегистрирован ли тип
func (t BlockType) IsValid() bool {
	_, exists := registry[t]
	return exists
}

// String возвращает имя типа
func (t BlockType) String() string {
	if info, ok := registry[t]; ok {
		return info.Name
	}
	return fmt.Sprintf("block(%d)", uint8(t))
}

// Color возвращает цвет типа в виде "#rrggbb"
func (t BlockType) Color() string {
	info := registry[t]
	return fmt.Sprintf("#%06x", info.Color)
}

// Types возвращает все типы в порядке регистрации
func Types() []BlockType {
	out := make([]BlockType, len(order))
	copy(out, order)
	return out
}

// Parse находит тип по имени без учёта регистра
func Parse(name string) (BlockType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range order {
		if registry[t].Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("неизвестный тип блока %q", name)
}

// MarshalText сериализует тип по имени
func (t BlockType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("неизвестный тип блока %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText разбирает тип по имени
func (t *BlockType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
