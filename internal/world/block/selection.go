package block

// Selection хранит выбранный тип блока для установки
type Selection struct {
	index int
}

// NewSelection создаёт выбор с указанным типом
func NewSelection(initial BlockType) *Selection {
	s := &Selection{}
	s.Select(initial)
	return s
}

// Current возвращает выбранный тип
func (s *Selection) Current() BlockType {
	return order[s.index]
}

// Index возвращает индекс выбранного типа
func (s *Selection) Index() int {
	return s.index
}

// Cycle сдвигает выбор на знак delta с переходом через край списка.
// Отрицательный delta (прокрутка вверх) сдвигает к началу списка.
func (s *Selection) Cycle(delta int) {
	switch {
	case delta < 0:
		s.index--
	case delta > 0:
		s.index++
	default:
		return
	}

	if s.index < 0 {
		s.index = len(order) - 1
	} else if s.index >= len(order) {
		s.index = 0
	}
}

// Select выбирает тип напрямую. Незарегистрированный тип игнорируется.
func (s *Selection) Select(t BlockType) bool {
	for i, candidate := range order {
		if candidate == t {
			s.index = i
			return true
		}
	}
	return false
}

// PaletteEntry описывает кнопку выбора блока
type PaletteEntry struct {
	Type     BlockType `json:"type"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Selected bool      `json:"selected"`
}

// Palette возвращает список типов с цветами и отметкой выбранного
func (s *Selection) Palette() []PaletteEntry {
	entries := make([]PaletteEntry, 0, len(order))
	for i, t := range order {
		entries = append(entries, PaletteEntry{
			Type:     t,
			Name:     t.String(),
			Color:    t.Color(),
			Selected: i == s.index,
		})
	}
	return entries
}
