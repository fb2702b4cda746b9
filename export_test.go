package rocketsolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// All tests share one scratch configuration so exports land in a temp dir.
func TestMain(m *testing.M) {
	confDir, err := os.MkdirTemp("", "rocketsolver")
	if err != nil {
		panic(err)
	}
	outDir := filepath.Join(confDir, "output")
	conf := fmt.Sprintf("[general]\noutput_path = %q\n", outDir)
	if err = os.WriteFile(filepath.Join(confDir, "conf.toml"), []byte(conf), 0644); err != nil {
		panic(err)
	}
	os.Setenv("SRM_CONFIG", confDir)
	code := m.Run()
	os.RemoveAll(confDir)
	os.Exit(code)
}

func syntheticHistory(n int) []BurnRecord {
	history := make([]BurnRecord, n)
	for i := range history {
		t := float64(i) * 0.01
		// A triangular thrust curve peaking mid-burn.
		thrust := 4000 * (1 - 2*absFloat(float64(i)/float64(n-1)-0.5))
		history[i] = BurnRecord{
			Time:            t,
			State:           Burning,
			ChamberPressure: 4e6,
			Thrust:          thrust,
			BurnArea:        0.3,
			PortArea:        1.6e-3,
			BurnRate:        0.009,
			FreeVolume:      5e-3,
			PropellantMass:  20 * (1 - float64(i)/float64(n-1)),
		}
	}
	return history
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestExportConfigIsUseless(t *testing.T) {
	if !(ExportConfig{}).IsUseless() {
		t.Fatal("an empty config exports nothing")
	}
	if (ExportConfig{AsENG: true}).IsUseless() {
		t.Fatal("an .eng config is useful")
	}
}

func TestStreamRecords(t *testing.T) {
	motor, err := NewOlympusMotor()
	if err != nil {
		t.Fatalf("olympus: %s", err)
	}
	history := syntheticHistory(50)
	ch := make(chan BurnRecord, len(history))
	for _, rec := range history {
		ch <- rec
	}
	close(ch)
	conf := ExportConfig{Filename: "stream-test", AsCSV: true, AsENG: true}
	StreamRecords(conf, motor, SimulationParams{}, ch)

	outDir := solverConfig().outputDir

	// CSV: one row per record under the header.
	raw, err := os.ReadFile(filepath.Join(outDir, "burn-stream-test.csv"))
	if err != nil {
		t.Fatalf("csv not written: %s", err)
	}
	content := string(raw)
	if !strings.Contains(content, "time,state,web,chamberPressure") {
		t.Fatal("csv header missing")
	}
	rows := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "burning") {
			rows++
		}
	}
	if rows != len(history) {
		t.Fatalf("csv rows: %d, expected %d", rows, len(history))
	}

	// ENG: comment, header, 25 samples ending at zero thrust, terminator.
	raw, err = os.ReadFile(filepath.Join(outDir, "stream-test.eng"))
	if err != nil {
		t.Fatalf("eng not written: %s", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 28 {
		t.Fatalf("eng line count: %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], ";") {
		t.Fatal("eng must open with a comment")
	}
	header := strings.Fields(lines[1])
	if len(header) != 7 {
		t.Fatalf("eng header fields: %v", header)
	}
	if header[0] != "Olympus" || header[3] != "P" || header[6] != "rocket-solver" {
		t.Fatalf("eng header: %v", header)
	}
	lastSample := strings.Fields(lines[26])
	if len(lastSample) != 2 || lastSample[1] != "0.000" {
		t.Fatalf("final eng sample must be zero thrust: %v", lastSample)
	}
	if lines[27] != ";" {
		t.Fatalf("eng terminator: %q", lines[27])
	}
}

func TestStreamRecordsCSVAppend(t *testing.T) {
	motor, err := NewOlympusMotor()
	if err != nil {
		t.Fatalf("olympus: %s", err)
	}
	history := syntheticHistory(10)
	ch := make(chan BurnRecord, len(history))
	for _, rec := range history {
		ch <- rec
	}
	close(ch)
	conf := ExportConfig{
		Filename:     "append-test",
		AsCSV:        true,
		CSVAppendHdr: func() string { return "thrustLbf" },
		CSVAppend: func(rec BurnRecord) string {
			return fmt.Sprintf("%f", rec.Thrust*0.2248089431)
		},
	}
	StreamRecords(conf, motor, SimulationParams{}, ch)
	raw, err := os.ReadFile(filepath.Join(solverConfig().outputDir, "burn-append-test.csv"))
	if err != nil {
		t.Fatalf("csv not written: %s", err)
	}
	if !strings.Contains(string(raw), ",thrustLbf") {
		t.Fatal("appended header missing")
	}
}
