package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

const (
	// contactEpsilon допускает погрешность при сравнении ног с гранью блока
	contactEpsilon = 1e-9
	// groundProbeDepth толщина проверочного коллайдера под ногами
	groundProbeDepth = 0.2
)

// Params содержит параметры движения игрока
type Params struct {
	Gravity       float64    // Ускорение свободного падения, ед/с²
	JumpHeight    float64    // Высота прыжка, ед
	Speed         float64    // Скорость ходьбы, ед/с
	Damping       float64    // Коэффициент затухания горизонтальной скорости, 1/с
	AccelFactor   float64    // Множитель ускорения
	Width         float64    // Ширина коллайдера игрока (X и Z)
	Height        float64    // Высота коллайдера игрока
	EyeHeight     float64    // Высота камеры над ногами
	MaxFrameDelta float64    // Максимальный шаг интегрирования, с
	WorldSize     float64    // Размер мира по X и Z
	Spawn         mgl64.Vec3 // Точка появления (позиция ног)
	FallRecovery  bool       // Возвращать игрока на точку появления при падении из мира
	FallThreshold float64    // Высота, ниже которой срабатывает возврат
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		Gravity:       20,
		JumpHeight:    1,
		Speed:         8,
		Damping:       10,
		AccelFactor:   5,
		Width:         0.8,
		Height:        1.8,
		EyeHeight:     1.6,
		MaxFrameDelta: 0.1,
		WorldSize:     20,
		Spawn:         mgl64.Vec3{0, 0, 5},
		FallRecovery:  true,
		FallThreshold: -50,
	}
}

// JumpVelocity возвращает начальную скорость, при которой вершина прыжка равна JumpHeight
func (p Params) JumpVelocity() float64 {
	return math.Sqrt(2 * p.JumpHeight * p.Gravity)
}

// Player представляет состояние игрока
type Player struct {
	Feet     mgl64.Vec3 // Точка контакта с землёй (низ коллайдера)
	Velocity mgl64.Vec3
	Grounded bool
}

// NewPlayer создаёт игрока в точке появления
func NewPlayer(spawn mgl64.Vec3) *Player {
	return &Player{Feet: spawn}
}

// Box возвращает коллайдер игрока
func (p *Player) Box(params Params) AABB {
	return EntityBox(p.Feet, params.Width, params.Height)
}

// Eye возвращает позицию камеры
func (p *Player) Eye(params Params) mgl64.Vec3 {
	return p.Feet.Add(mgl64.Vec3{0, params.EyeHeight, 0})
}

// Movement представляет управляющий ввод для одного кадра
type Movement struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
	Yaw      float64 // Поворот камеры вокруг вертикальной оси, рад
}

// Report описывает, что произошло с игроком за кадр
type Report struct {
	BlockedX  bool
	BlockedZ  bool
	Jumped    bool
	Landed    bool
	HeadBump  bool
	Corrected bool
	Respawned bool
}

// FlatBasis возвращает горизонтальные векторы «вперёд» и «вправо» для поворота yaw.
// При yaw = 0 камера смотрит в сторону -Z.
func FlatBasis(yaw float64) (forward, right vec.Vec2Float) {
	sin, cos := math.Sincos(yaw)
	forward = vec.Vec2Float{X: -sin, Z: -cos}
	right = vec.Vec2Float{X: cos, Z: -sin}
	return forward, right
}

// WishDirection собирает желаемое направление движения из клавиш
func WishDirection(mv Movement) vec.Vec2Float {
	forward, right := FlatBasis(mv.Yaw)

	var dir vec.Vec2Float
	if mv.Forward {
		dir = dir.Add(forward)
	}
	if mv.Backward {
		dir = dir.Sub(forward)
	}
	if mv.Right {
		dir = dir.Add(right)
	}
	if mv.Left {
		dir = dir.Sub(right)
	}
	return dir.Normalized()
}

// ClampDelta ограничивает шаг интегрирования
func (p Params) ClampDelta(dt float64) float64 {
	if dt > p.MaxFrameDelta {
		return p.MaxFrameDelta
	}
	return dt
}

// StepPlayer продвигает игрока на один кадр: ускорение, гравитация, прыжок и
// разрешение коллизий по осям (сначала X, затем Z, затем Y).
func StepPlayer(p *Player, mv Movement, dt float64, params Params, world Collider) Report {
	var report Report

	dt = params.ClampDelta(dt)
	if dt <= 0 {
		return report
	}

	// Горизонтальная скорость: затухание, затем ускорение в сторону ввода
	wish := WishDirection(mv)
	horizontal := vec.Flatten(p.Velocity)
	horizontal = horizontal.Sub(horizontal.Mul(params.Damping * dt))
	horizontal = horizontal.Add(wish.Mul(params.Speed * dt * params.AccelFactor))
	p.Velocity = horizontal.Vec3(p.Velocity.Y())

	// X
	oldX := p.Feet.X()
	p.Feet[0] += p.Velocity.X() * dt
	if CheckCollision(p.Box(params), world) {
		p.Feet[0] = oldX
		p.Velocity[0] = 0
		report.BlockedX = true
	}

	// Z
	oldZ := p.Feet.Z()
	p.Feet[2] += p.Velocity.Z() * dt
	if CheckCollision(p.Box(params), world) {
		p.Feet[2] = oldZ
		p.Velocity[2] = 0
		report.BlockedZ = true
	}

	// Прыжок или гравитация
	if mv.Jump && p.Grounded {
		p.Velocity[1] = params.JumpVelocity()
		report.Jumped = true
	} else {
		p.Velocity[1] -= params.Gravity * dt
	}
	p.Grounded = false

	resolveVertical(p, dt, params, world, &report)

	if p.Velocity.Y() == 0 {
		probeGround(p, params, world)
	}

	clampToWorld(p, params)

	if params.FallRecovery && p.Feet.Y() < params.FallThreshold {
		p.Feet = params.Spawn
		p.Velocity = mgl64.Vec3{}
		p.Grounded = false
		report.Respawned = true
	}

	return report
}

// resolveVertical сдвигает игрока по Y и обрабатывает приземление и удар головой
func resolveVertical(p *Player, dt float64, params Params, world Collider, report *Report) {
	vy := p.Velocity.Y()
	oldY := p.Feet.Y()
	oldBox := p.Box(params)

	newY := oldY + vy*dt
	p.Feet[1] = newY
	box := p.Box(params)

	solids := world.SolidsIn(oldBox.Union(box))

	switch {
	case vy < 0:
		top, found := math.Inf(-1), false
		for _, s := range solids {
			if !box.OverlapsXZ(s) {
				continue
			}
			surface := s.Max.Y()
			if oldY >= surface-contactEpsilon && newY <= surface && surface > top {
				top, found = surface, true
			}
		}
		if found {
			p.Feet[1] = top
			p.Velocity[1] = 0
			p.Grounded = true
			report.Landed = true
			box = p.Box(params)
			if !intersectsAny(box, solids) {
				return
			}
		}

	case vy > 0:
		oldHead, newHead := oldY+params.Height, newY+params.Height
		bottom, found := math.Inf(1), false
		for _, s := range solids {
			if !box.OverlapsXZ(s) {
				continue
			}
			ceiling := s.Min.Y()
			if oldHead <= ceiling+contactEpsilon && newHead >= ceiling && ceiling < bottom {
				bottom, found = ceiling, true
			}
		}
		if found {
			p.Feet[1] = bottom - params.Height
			p.Velocity[1] = 0
			report.HeadBump = true
			box = p.Box(params)
			if !intersectsAny(box, solids) {
				return
			}
		}
	}

	// Грубая коррекция: пересечение, которое не снял ни один из снапов выше
	top, overlapped := math.Inf(-1), false
	for _, s := range solids {
		if box.Intersects(s) {
			overlapped = true
			top = math.Max(top, s.Max.Y())
		}
	}
	if !overlapped {
		return
	}
	if newY < oldY {
		p.Feet[1] = top
	} else {
		p.Feet[1] = oldY
	}
	p.Velocity[1] = 0
	report.Corrected = true
}

func intersectsAny(box AABB, solids []AABB) bool {
	for _, s := range solids {
		if box.Intersects(s) {
			return true
		}
	}
	return false
}

// probeGround проверяет тонкий слой под ногами и при наличии опоры ставит игрока на неё
func probeGround(p *Player, params Params, world Collider) {
	hw := params.Width / 2
	probe := AABB{
		Min: mgl64.Vec3{p.Feet.X() - hw, p.Feet.Y() - groundProbeDepth, p.Feet.Z() - hw},
		Max: mgl64.Vec3{p.Feet.X() + hw, p.Feet.Y(), p.Feet.Z() + hw},
	}

	top, found := math.Inf(-1), false
	for _, s := range world.SolidsIn(probe) {
		if probe.Intersects(s) && s.Max.Y() > top {
			top, found = s.Max.Y(), true
		}
	}
	if found {
		p.Feet[1] = top
	}
	p.Grounded = found
}

// clampToWorld не даёт игроку выйти за пределы мира по X и Z
func clampToWorld(p *Player, params Params) {
	half := params.WorldSize/2 - 0.5
	p.Feet[0] = math.Max(-half, math.Min(half, p.Feet.X()))
	p.Feet[2] = math.Max(-half, math.Min(half, p.Feet.Z()))
}
