// Package input loads the tabular model inputs: the time grid, the zonal
// demand and price series, and the optional shiftable-load tables. Missing
// optional tables fall back to the formulation defaults.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/loadshift/core/shift"
	"github.com/kilianp07/loadshift/core/timegrid"
)

// Config holds the input file locations.
type Config struct {
	Dir          string `json:"dir"`
	GridFile     string `json:"grid_file"`
	DemandFile   string `json:"demand_file"`
	LimitsFile   string `json:"limits_file"`
	ResponseFile string `json:"response_file"`
}

// SetDefaults applies the conventional file names.
func (c *Config) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "inputs"
	}
	if c.GridFile == "" {
		c.GridFile = "grid.csv"
	}
	if c.DemandFile == "" {
		c.DemandFile = "demand.csv"
	}
	if c.LimitsFile == "" {
		c.LimitsFile = "dr_data.csv"
	}
	if c.ResponseFile == "" {
		c.ResponseFile = "dr_response_recovery.csv"
	}
}

// Data is the loaded, immutable model input.
type Data struct {
	Grid   *timegrid.Grid
	Params *shift.Params
	// Price is the supply price per (zone, step) in currency per MWh.
	Price map[shift.Key]float64
}

// Load reads all input tables. The limits and response tables are optional;
// the grid and demand tables are required.
func Load(cfg Config) (*Data, error) {
	cfg.SetDefaults()

	steps, err := loadGrid(filepath.Join(cfg.Dir, cfg.GridFile))
	if err != nil {
		return nil, err
	}
	grid, err := timegrid.New(steps)
	if err != nil {
		return nil, err
	}

	data := &Data{
		Grid: grid,
		Params: &shift.Params{
			BaseDemand: make(map[shift.Key]float64),
			DownLimit:  make(map[shift.Key]float64),
			UpLimit:    make(map[shift.Key]float64),
			Delay:      make(map[shift.Key]float64),
			Recovery:   make(map[shift.Key]float64),
		},
		Price: make(map[shift.Key]float64),
	}
	if err := loadDemand(filepath.Join(cfg.Dir, cfg.DemandFile), data); err != nil {
		return nil, err
	}
	if err := loadLimits(filepath.Join(cfg.Dir, cfg.LimitsFile), data.Params); err != nil {
		return nil, err
	}
	if err := loadResponse(filepath.Join(cfg.Dir, cfg.ResponseFile), data.Params); err != nil {
		return nil, err
	}
	if err := data.Params.Validate(grid); err != nil {
		return nil, err
	}
	return data, nil
}

func loadGrid(path string) ([]timegrid.Step, error) {
	var steps []timegrid.Step
	err := readTable(path, []string{"step", "cycle", "duration_hours"}, func(rec map[string]string) error {
		idx, err := strconv.Atoi(rec["step"])
		if err != nil {
			return fmt.Errorf("bad step id %q: %w", rec["step"], err)
		}
		if idx != len(steps) {
			return fmt.Errorf("step ids must be ordered from 0, got %d at row %d", idx, len(steps))
		}
		cycle, err := strconv.Atoi(rec["cycle"])
		if err != nil {
			return fmt.Errorf("bad cycle id %q: %w", rec["cycle"], err)
		}
		dur, err := strconv.ParseFloat(rec["duration_hours"], 64)
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", rec["duration_hours"], err)
		}
		steps = append(steps, timegrid.Step{Cycle: cycle, DurationHours: dur})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func loadDemand(path string, data *Data) error {
	seen := make(map[string]bool)
	return readTable(path, []string{"zone", "step", "demand_mw", "price_per_mwh"}, func(rec map[string]string) error {
		z := rec["zone"]
		if !seen[z] {
			seen[z] = true
			data.Params.Zones = append(data.Params.Zones, z)
		}
		t, err := strconv.Atoi(rec["step"])
		if err != nil {
			return fmt.Errorf("bad step %q: %w", rec["step"], err)
		}
		d, err := strconv.ParseFloat(rec["demand_mw"], 64)
		if err != nil {
			return fmt.Errorf("bad demand %q: %w", rec["demand_mw"], err)
		}
		p, err := strconv.ParseFloat(rec["price_per_mwh"], 64)
		if err != nil {
			return fmt.Errorf("bad price %q: %w", rec["price_per_mwh"], err)
		}
		k := shift.Key{Zone: z, Step: t}
		data.Params.BaseDemand[k] = d
		data.Price[k] = p
		return nil
	})
}

func loadLimits(path string, p *shift.Params) error {
	err := readTable(path, []string{"zone", "step", "shift_down_limit_mw", "shift_up_limit_mw"}, func(rec map[string]string) error {
		t, err := strconv.Atoi(rec["step"])
		if err != nil {
			return fmt.Errorf("bad step %q: %w", rec["step"], err)
		}
		k := shift.Key{Zone: rec["zone"], Step: t}
		down, err := strconv.ParseFloat(rec["shift_down_limit_mw"], 64)
		if err != nil {
			return fmt.Errorf("bad down limit %q: %w", rec["shift_down_limit_mw"], err)
		}
		p.DownLimit[k] = down
		up, err := parseLimit(rec["shift_up_limit_mw"])
		if err != nil {
			return fmt.Errorf("bad up limit %q: %w", rec["shift_up_limit_mw"], err)
		}
		p.UpLimit[k] = up
		return nil
	})
	if os.IsNotExist(err) {
		return nil // optional table
	}
	return err
}

func loadResponse(path string, p *shift.Params) error {
	err := readTable(path, []string{"zone", "step", "response_hours", "recovery_hours"}, func(rec map[string]string) error {
		t, err := strconv.Atoi(rec["step"])
		if err != nil {
			return fmt.Errorf("bad step %q: %w", rec["step"], err)
		}
		k := shift.Key{Zone: rec["zone"], Step: t}
		delay, err := strconv.ParseFloat(rec["response_hours"], 64)
		if err != nil {
			return fmt.Errorf("bad response %q: %w", rec["response_hours"], err)
		}
		rc, err := strconv.ParseFloat(rec["recovery_hours"], 64)
		if err != nil {
			return fmt.Errorf("bad recovery %q: %w", rec["recovery_hours"], err)
		}
		p.Delay[k] = delay
		p.Recovery[k] = rc
		return nil
	})
	if os.IsNotExist(err) {
		return nil // optional table
	}
	return err
}

// parseLimit reads a non-negative limit where an empty cell or "inf" means
// unbounded.
func parseLimit(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "inf" || s == "." {
		return math.Inf(1), nil
	}
	return strconv.ParseFloat(s, 64)
}

// readTable streams a CSV file with a header row, calling fn with a
// column-name keyed record per data row.
func readTable(path string, required []string, fn func(map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%s: read header: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: missing column %q", path, name)
		}
	}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: row %d: %w", path, line, err)
		}
		line++
		rec := make(map[string]string, len(required))
		for _, name := range required {
			rec[name] = row[cols[name]]
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("%s: row %d: %w", path, line, err)
		}
	}
}
