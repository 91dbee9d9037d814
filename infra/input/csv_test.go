package input

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kilianp07/loadshift/core/shift"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeBaseTables(t *testing.T, dir string) {
	writeFile(t, dir, "grid.csv", strings.Join([]string{
		"step,cycle,duration_hours",
		"0,0,1",
		"1,0,1",
		"2,0,1",
		"3,0,1",
	}, "\n"))
	rows := []string{"zone,step,demand_mw,price_per_mwh"}
	for i := 0; i < 4; i++ {
		rows = append(rows, "Z,"+string(rune('0'+i))+",100,20")
	}
	writeFile(t, dir, "demand.csv", strings.Join(rows, "\n"))
}

func TestLoad_RequiredTablesOnly(t *testing.T) {
	dir := t.TempDir()
	writeBaseTables(t, dir)

	data, err := Load(Config{Dir: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Grid.Len() != 4 {
		t.Fatalf("grid has %d steps, want 4", data.Grid.Len())
	}
	if got := data.Params.Zones; len(got) != 1 || got[0] != "Z" {
		t.Fatalf("zones = %v", got)
	}
	// defaults apply when the optional tables are absent
	if got := data.Params.Down("Z", 1); got != 0 {
		t.Fatalf("default down = %v", got)
	}
	if got := data.Params.Up("Z", 1); !math.IsInf(got, 1) {
		t.Fatalf("default up = %v", got)
	}
	if got := data.Params.RecoveryHours("Z", 2); got != shift.DefaultRecoveryHours {
		t.Fatalf("default recovery = %v", got)
	}
	if got := data.Price[shift.Key{Zone: "Z", Step: 3}]; got != 20 {
		t.Fatalf("price = %v, want 20", got)
	}
}

func TestLoad_OptionalTables(t *testing.T) {
	dir := t.TempDir()
	writeBaseTables(t, dir)
	writeFile(t, dir, "dr_data.csv", strings.Join([]string{
		"zone,step,shift_down_limit_mw,shift_up_limit_mw",
		"Z,0,10,30",
		"Z,1,15,inf",
		"Z,2,0,",
	}, "\n"))
	writeFile(t, dir, "dr_response_recovery.csv", strings.Join([]string{
		"zone,step,response_hours,recovery_hours",
		"Z,0,2,4",
	}, "\n"))

	data, err := Load(Config{Dir: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := data.Params.Down("Z", 1); got != 15 {
		t.Fatalf("down = %v, want 15", got)
	}
	if got := data.Params.Up("Z", 0); got != 30 {
		t.Fatalf("up = %v, want 30", got)
	}
	if got := data.Params.Up("Z", 1); !math.IsInf(got, 1) {
		t.Fatalf("explicit inf up = %v", got)
	}
	if got := data.Params.Up("Z", 2); !math.IsInf(got, 1) {
		t.Fatalf("empty up cell = %v, want +Inf", got)
	}
	if got := data.Params.ResponseDelay("Z", 0); got != 2 {
		t.Fatalf("delay = %v, want 2", got)
	}
	if got := data.Params.RecoveryHours("Z", 0); got != 4 {
		t.Fatalf("recovery = %v, want 4", got)
	}
	// untouched steps keep the defaults
	if got := data.Params.ResponseDelay("Z", 3); got != shift.DefaultResponseDelayHours {
		t.Fatalf("default delay = %v", got)
	}
}

func TestLoad_RejectsDownLimitAboveDemand(t *testing.T) {
	dir := t.TempDir()
	writeBaseTables(t, dir)
	writeFile(t, dir, "dr_data.csv", strings.Join([]string{
		"zone,step,shift_down_limit_mw,shift_up_limit_mw",
		"Z,0,150,30",
	}, "\n"))

	_, err := Load(Config{Dir: dir})
	if err == nil || !strings.Contains(err.Error(), "down limit") {
		t.Fatalf("expected down-limit violation, got %v", err)
	}
}

func TestLoad_MissingRequiredTable(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(Config{Dir: dir}); err == nil {
		t.Fatalf("expected error for missing grid table")
	}
}

func TestLoad_RejectsUnorderedSteps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grid.csv", strings.Join([]string{
		"step,cycle,duration_hours",
		"0,0,1",
		"2,0,1",
	}, "\n"))
	if _, err := Load(Config{Dir: dir}); err == nil {
		t.Fatalf("expected error for unordered step ids")
	}
}
