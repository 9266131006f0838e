package vec

// Vec2 представляет колонку мира в плоскости XZ
type Vec2 struct {
	X, Z int
}

// Cell возвращает ячейку колонки на высоте y
func (v Vec2) Cell(y int) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Z}
}

// IsOrigin сообщает, является ли колонка центральной (0, 0)
func (v Vec2) IsOrigin() bool {
	return v.X == 0 && v.Z == 0
}
