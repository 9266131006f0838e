package world

import (
	"math/rand"
	"sort"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Слои плоского мира (координата Y ячейки)
const (
	SurfaceLayer    = -1 // Трава, верхняя грань на высоте 0
	SubsurfaceLayer = -2 // Земля под травой
	FeatureBase     = 0  // Первый слой столбиков над травой
)

// WorldGenerator генерирует плоский мир со случайными столбиками
type WorldGenerator struct {
	Seed            int64   // Сид для генерации шума и случайных чисел
	Size            int     // Ширина и глубина мира в блоках
	PillarChance    float64 // Средняя вероятность столбика в колонке (от 0 до 1)
	StoneChance     float64 // Доля камня в столбике, остальное дерево
	MaxPillarHeight int     // Максимальная высота столбика
	NoiseScale      float64 // Масштаб шума, модулирующего плотность столбиков
	Flat            bool    // Только пол, без столбиков

	noise *perlin.Perlin
	clear map[vec.Vec2]bool // Колонки, где столбики не ставятся
}

// GeneratorParams описывает мир так, чтобы его можно было построить заново
type GeneratorParams struct {
	Seed            int64      `json:"seed"`
	Size            int        `json:"size"`
	Flat            bool       `json:"flat,omitempty"`
	PillarChance    float64    `json:"pillar_chance"`
	StoneChance     float64    `json:"stone_chance"`
	MaxPillarHeight int        `json:"max_pillar_height"`
	NoiseScale      float64    `json:"noise_scale"`
	Clear           []vec.Vec2 `json:"clear,omitempty"`
}

// NewWorldGenerator создаёт новый генератор мира
func NewWorldGenerator(seed int64, size int) *WorldGenerator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав

	return &WorldGenerator{
		Seed:            seed,
		Size:            size,
		PillarChance:    0.05,
		StoneChance:     0.7,
		MaxPillarHeight: 3,
		NoiseScale:      0.15,
		noise:           perlin.NewPerlin(alpha, beta, n, seed),
		clear:           make(map[vec.Vec2]bool),
	}
}

// NewGeneratorFromParams восстанавливает генератор по сохранённым параметрам
func NewGeneratorFromParams(p GeneratorParams) *WorldGenerator {
	wg := NewWorldGenerator(p.Seed, p.Size)
	wg.Flat = p.Flat
	wg.PillarChance = p.PillarChance
	wg.StoneChance = p.StoneChance
	if p.MaxPillarHeight > 0 {
		wg.MaxPillarHeight = p.MaxPillarHeight
	}
	if p.NoiseScale > 0 {
		wg.NoiseScale = p.NoiseScale
	}
	for _, col := range p.Clear {
		wg.clear[col] = true
	}
	return wg
}

// Params возвращает параметры генератора; зарезервированные колонки упорядочены
func (wg *WorldGenerator) Params() GeneratorParams {
	p := GeneratorParams{
		Seed:            wg.Seed,
		Size:            wg.Size,
		Flat:            wg.Flat,
		PillarChance:    wg.PillarChance,
		StoneChance:     wg.StoneChance,
		MaxPillarHeight: wg.MaxPillarHeight,
		NoiseScale:      wg.NoiseScale,
	}
	for col := range wg.clear {
		p.Clear = append(p.Clear, col)
	}
	sort.Slice(p.Clear, func(i, j int) bool {
		if p.Clear[i].X != p.Clear[j].X {
			return p.Clear[i].X < p.Clear[j].X
		}
		return p.Clear[i].Z < p.Clear[j].Z
	})
	return p
}

// KeepClear запрещает столбики во всех колонках, которые задевает area по X и Z.
// Так точка появления игрока никогда не оказывается внутри блока.
func (wg *WorldGenerator) KeepClear(area physics.AABB) {
	from, to := area.Cells()
	for x := from.X; x <= to.X; x++ {
		for z := from.Z; z <= to.Z; z++ {
			wg.clear[vec.Vec2{X: x, Z: z}] = true
		}
	}
}

// Fill заполняет хранилище согласно Flat
func (wg *WorldGenerator) Fill(store *Store) int {
	if wg.Flat {
		return wg.GenerateFlat(store)
	}
	return wg.Generate(store)
}

// Columns возвращает все колонки мира, центрированного в начале координат
func (wg *WorldGenerator) Columns() []vec.Vec2 {
	half := wg.Size / 2
	columns := make([]vec.Vec2, 0, wg.Size*wg.Size)
	for x := -half; x < wg.Size-half; x++ {
		for z := -half; z < wg.Size-half; z++ {
			columns = append(columns, vec.Vec2{X: x, Z: z})
		}
	}
	return columns
}

// GenerateFlat заполняет хранилище только полом (трава и земля)
func (wg *WorldGenerator) GenerateFlat(store *Store) int {
	count := 0
	for _, col := range wg.Columns() {
		store.Add(NewBlock(col.Cell(SurfaceLayer), block.GrassBlock))
		store.Add(NewBlock(col.Cell(SubsurfaceLayer), block.DirtBlock))
		count += 2
	}
	return count
}

// Generate заполняет хранилище полом и столбиками из камня и дерева.
// Результат детерминирован для одинакового сида.
func (wg *WorldGenerator) Generate(store *Store) int {
	count := wg.GenerateFlat(store)

	rng := rand.New(rand.NewSource(wg.Seed))

	for _, col := range wg.Columns() {
		// Колонка появления игрока всегда свободна
		if col.IsOrigin() || wg.clear[col] {
			continue
		}
		if rng.Float64() >= wg.pillarChance(col) {
			continue
		}

		height := 1 + rng.Intn(wg.MaxPillarHeight)
		for y := 0; y < height; y++ {
			t := block.WoodBlock
			if rng.Float64() < wg.StoneChance {
				t = block.StoneBlock
			}
			store.Add(NewBlock(col.Cell(FeatureBase+y), t))
			count++
		}
	}

	return count
}

// pillarChance модулирует вероятность столбика шумом Перлина (среднее ≈ PillarChance)
func (wg *WorldGenerator) pillarChance(col vec.Vec2) float64 {
	if wg.noise == nil {
		return wg.PillarChance
	}
	// Noise2D возвращает значение от -1 до 1
	n := wg.noise.Noise2D(float64(col.X)*wg.NoiseScale+0.5, float64(col.Z)*wg.NoiseScale+0.5)
	return wg.PillarChance * (1 + n)
}
