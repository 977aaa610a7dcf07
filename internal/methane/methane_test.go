package methane

import (
	"math"
	"strings"
	"testing"
)

// 5000 ppm, clean fault word, 298.2 K.
var cleanFrame = []string{
	"0000005b", "00001388", "aaaaaaaa", "00000ba6",
	"0000044f", "fffffbb0", "0000005d",
}

// Same frame with the gas-sensor nibble set to fault code 1.
var faultyFrame = []string{
	"0000005b", "00001388", "aaaaaaa1", "00000ba6",
	"00000446", "fffffbb9", "0000005d",
}

func TestParseFrameClean(t *testing.T) {
	f, err := ParseFrame(cleanFrame)
	if err != nil {
		t.Fatalf("parse clean frame: %v", err)
	}
	if f.ConcentrationPPM != 5000 {
		t.Errorf("ppm = %d, want 5000", f.ConcentrationPPM)
	}
	if got := f.ConcentrationPercent(); got != 0.5 {
		t.Errorf("percent = %v, want 0.5", got)
	}
	if got := f.TemperatureC(); math.Abs(got-25.05) > 1e-9 {
		t.Errorf("temperature = %v, want 25.05", got)
	}
	faults := f.FaultMessages()
	if len(faults) != 1 || faults[0] != "No errors detected" {
		t.Errorf("faults = %v, want [No errors detected]", faults)
	}
}

func TestParseFrameDecodesFaultNibbles(t *testing.T) {
	f, err := ParseFrame(faultyFrame)
	if err != nil {
		t.Fatalf("parse faulty frame: %v", err)
	}
	faults := f.FaultMessages()
	if len(faults) != 1 {
		t.Fatalf("faults len = %d, want 1: %v", len(faults), faults)
	}
	if faults[0] != "Gas Sensor: Sensor not present" {
		t.Errorf("fault = %q", faults[0])
	}
}

func TestParseFrameRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		words []string
		want  string
	}{
		{"too few words", cleanFrame[:6], "needs 7 words"},
		{"bad hex", replace(cleanFrame, 1, "zzzz"), "word 1"},
		{"bad start marker", replace(cleanFrame, 0, "00000000"), "invalid start or end marker"},
		{"bad end marker", replace(cleanFrame, 6, "00000000"), "invalid start or end marker"},
		{"bad crc", replace(cleanFrame, 4, "00000450"), "CRC mismatch"},
		{"bad inverted crc", replace(cleanFrame, 5, "00000000"), "CRC mismatch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFrame(tc.words)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestFaultMessagesUnknownCode(t *testing.T) {
	f := Frame{FaultWord: 0xAAAAAAAF} // nibble 0xF is not in the table
	faults := f.FaultMessages()
	if len(faults) != 1 {
		t.Fatalf("faults len = %d, want 1", len(faults))
	}
	if !strings.Contains(faults[0], "Unknown code 0xF in subsystem Gas Sensor") {
		t.Errorf("fault = %q", faults[0])
	}
}

func replace(words []string, i int, w string) []string {
	out := make([]string, len(words))
	copy(out, words)
	out[i] = w
	return out
}
