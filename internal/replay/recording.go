// Package replay записывает ввод кадров и воспроизводит сессию заново.
// Записывается только ввод: мир восстанавливается генератором по параметрам
// из заголовка, физика и действия берут настройки оттуда же.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// FormatVersion версия формата записи
const FormatVersion = 2

// ErrCorruptRecording возвращается для повреждённой или несовместимой записи
var ErrCorruptRecording = errors.New("replay: повреждённая запись")

// Header пишется первой строкой записи и описывает исходный мир
// и настройки симуляции
type Header struct {
	Version   int                   `json:"version"`
	World     world.GeneratorParams `json:"world"`
	Sim       sim.Config            `json:"sim"`
	CreatedAt time.Time             `json:"created_at"`
}

// NewHeader собирает заголовок для мира генератора gen и настроек cfg
func NewHeader(gen *world.WorldGenerator, cfg sim.Config) Header {
	return Header{World: gen.Params(), Sim: cfg}
}

// Frame хранит ввод одного кадра
type Frame struct {
	Frame uint64    `json:"frame"`
	DT    float64   `json:"dt"`
	Input sim.Input `json:"input"`
}

// Recorder пишет кадры строками JSON в поток zstd
type Recorder struct {
	encoder *zstd.Encoder
	json    *json.Encoder
	frames  uint64
}

// NewRecorder начинает запись в w и сразу пишет заголовок
func NewRecorder(w io.Writer, header Header) (*Recorder, error) {
	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd компрессора: %w", err)
	}

	header.Version = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}

	r := &Recorder{encoder: encoder, json: json.NewEncoder(encoder)}
	if err := r.json.Encode(header); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("запись заголовка: %w", err)
	}
	return r, nil
}

// Record дописывает кадр. Подходит как sim.Recorder.
func (r *Recorder) Record(frame uint64, dt float64, in sim.Input) error {
	if err := r.json.Encode(Frame{Frame: frame, DT: dt, Input: in}); err != nil {
		return fmt.Errorf("запись кадра %d: %w", frame, err)
	}
	r.frames++
	return nil
}

// Frames возвращает число записанных кадров
func (r *Recorder) Frames() uint64 {
	return r.frames
}

// Close завершает поток zstd. Нижележащий writer не закрывается.
func (r *Recorder) Close() error {
	return r.encoder.Close()
}

// Reader читает запись, сделанную Recorder
type Reader struct {
	decoder *zstd.Decoder
	json    *json.Decoder
	header  Header
	last    uint64
}

// NewReader открывает запись и читает заголовок
func NewReader(r io.Reader) (*Reader, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd декомпрессора: %w", err)
	}

	reader := &Reader{decoder: decoder, json: json.NewDecoder(decoder)}
	if err := reader.json.Decode(&reader.header); err != nil {
		decoder.Close()
		return nil, fmt.Errorf("%w: заголовок: %v", ErrCorruptRecording, err)
	}
	if reader.header.Version != FormatVersion {
		decoder.Close()
		return nil, fmt.Errorf("%w: неподдерживаемая версия %d", ErrCorruptRecording, reader.header.Version)
	}
	return reader, nil
}

// Header возвращает заголовок записи
func (r *Reader) Header() Header {
	return r.header
}

// Next возвращает следующий кадр или io.EOF в конце записи
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.json.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("%w: кадр после %d: %v", ErrCorruptRecording, r.last, err)
	}
	if f.Frame != r.last+1 {
		return Frame{}, fmt.Errorf("%w: ожидался кадр %d, получен %d", ErrCorruptRecording, r.last+1, f.Frame)
	}
	r.last = f.Frame
	return f, nil
}

// ReadAll читает все оставшиеся кадры
func (r *Reader) ReadAll() ([]Frame, error) {
	var frames []Frame
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}

// Close освобождает декомпрессор
func (r *Reader) Close() {
	r.decoder.Close()
}
