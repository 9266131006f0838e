package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/replay"
	"github.com/annel0/voxel-sandbox/internal/sim"
)

func main() {
	var (
		input      = flag.String("in", "", "Файл записи сессии (обязательно)")
		command    = flag.String("cmd", "run", "Команда: info, frames, run")
		configPath = flag.String("config", "", "YAML конфигурация физики (по умолчанию из записи)")
		limit      = flag.Int("limit", 20, "Сколько кадров печатать для команды frames")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	file, err := os.Open(*input)
	if err != nil {
		log.Fatalf("❌ Не удалось открыть запись: %v", err)
	}
	defer file.Close()

	reader, err := replay.NewReader(file)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer reader.Close()

	switch *command {
	case "info":
		err = showInfo(os.Stdout, reader)
	case "frames":
		err = showFrames(os.Stdout, reader, *limit)
	case "run":
		err = runReplay(os.Stdout, reader, *configPath)
	default:
		log.Fatalf("❌ Неизвестная команда: %s", *command)
	}
	if err != nil {
		log.Fatalf("❌ %s: %v", *command, err)
	}
}

func showInfo(w io.Writer, reader *replay.Reader) error {
	frames, err := reader.ReadAll()
	if err != nil {
		return err
	}

	h := reader.Header()
	var seconds float64
	for _, f := range frames {
		seconds += f.DT
	}

	fmt.Fprintf(w, "Версия:   %d\n", h.Version)
	fmt.Fprintf(w, "Создана:  %s\n", h.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Мир:      %dx%d seed=%d flat=%v\n", h.World.Size, h.World.Size, h.World.Seed, h.World.Flat)
	fmt.Fprintf(w, "Столбики: %.2f (камень %.2f, до %d блоков)\n", h.World.PillarChance, h.World.StoneChance, h.World.MaxPillarHeight)
	fmt.Fprintf(w, "Кадров:   %d (%.1f с)\n", len(frames), seconds)
	return nil
}

func showFrames(w io.Writer, reader *replay.Reader, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tDT\tINPUT")

	for printed := 0; limit <= 0 || printed < limit; printed++ {
		f, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		data, err := json.Marshal(f.Input)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%s\n", f.Frame, f.DT, data)
	}
	return tw.Flush()
}

func runReplay(w io.Writer, reader *replay.Reader, configPath string) error {
	frames, err := reader.ReadAll()
	if err != nil {
		return err
	}

	header := reader.Header()
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		header.Sim = cfg.SimConfig()
		header.Sim.Physics.WorldSize = float64(header.World.Size)
	}

	state := header.NewState()
	summary := replay.Replay(state, frames)

	snap := state.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Frames   int          `json:"frames"`
		Placed   int          `json:"placed"`
		Removed  int          `json:"removed"`
		Snapshot sim.Snapshot `json:"final"`
	}{summary.Frames, summary.Placed, summary.Removed, snap})
}
