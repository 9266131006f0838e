package world

// ChangeKind определяет вид изменения мира
type ChangeKind uint8

const (
	ChangePlaced  ChangeKind = iota // Блок поставлен игроком
	ChangeRemoved                   // Блок удалён игроком
)

// String возвращает имя события для шины
func (k ChangeKind) String() string {
	switch k {
	case ChangePlaced:
		return "block.placed"
	case ChangeRemoved:
		return "block.removed"
	default:
		return "block.unknown"
	}
}

// Change описывает одно изменение мира за кадр
type Change struct {
	Kind  ChangeKind
	Block Block
	Frame uint64 // Номер кадра, в котором произошло изменение
}
