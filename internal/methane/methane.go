// Package methane decodes the seven-word INIR2 sensor frame delivered by
// the gateway as hex strings: start marker, concentration, fault word,
// temperature, CRC, inverted CRC, end marker.
package methane

import (
	"fmt"
	"strconv"
)

const (
	startWord = 0x0000005B
	endWord   = 0x0000005D
	frameLen  = 7
)

var subsystems = [8]string{
	"Gas Sensor", "Power / Reset", "ADC", "DAC", "UART",
	"Timer / Counter", "General", "Memory",
}

var faultTable = map[int]map[uint32]string{
	0: {
		1: "Sensor not present",
		2: "Temperature sensor defective or out of spec",
		3: "Active/reference signal too weak",
		4: "Initial configuration - no settings saved",
	},
	1: {
		1: "Power-On Reset",
		2: "Watchdog Reset",
		3: "Software Reset",
		4: "External Reset (Pin)",
	},
	2: {1: "Gas concentration not stable"},
	3: {
		1: "DAC turned off",
		2: "DAC disabled in config mode",
	},
	4: {
		1: "UART break longer than word length",
		2: "Framing error",
		3: "Parity error",
		4: "Overrun error",
	},
	5: {
		1: "Timer1 error",
		2: "Timer2 or Watchdog error",
	},
	6: {
		1: "Overrange",
		2: "Underrange",
		3: "Warm-Up (invalid measurement)",
	},
	7: {
		1: "Flash write failed",
		2: "Flash read failed",
	},
}

// Frame is one validated methane sensor frame.
type Frame struct {
	ConcentrationPPM uint32
	FaultWord        uint32
	TemperatureKx10  uint32
	CRC              uint32
	InvCRC           uint32
}

// TemperatureC converts the sensor's Kelvin-times-ten field to Celsius.
func (f Frame) TemperatureC() float64 {
	return float64(f.TemperatureKx10)/10.0 - 273.15
}

// ConcentrationPercent is the methane concentration as percent by volume.
func (f Frame) ConcentrationPercent() float64 {
	return float64(f.ConcentrationPPM) / 10000.0
}

// FaultMessages decodes the fault word, one 4-bit nibble per subsystem.
// Nibble 0xA means no error for that subsystem.
func (f Frame) FaultMessages() []string {
	var messages []string
	for idx := 0; idx < 8; idx++ {
		nibble := (f.FaultWord >> (idx * 4)) & 0xF
		if nibble == 0xA {
			continue
		}
		text, ok := faultTable[idx][nibble]
		if !ok {
			text = fmt.Sprintf("Unknown code 0x%X in subsystem %s", nibble, subsystems[idx])
		}
		messages = append(messages, subsystems[idx]+": "+text)
	}
	if len(messages) == 0 {
		return []string{"No errors detected"}
	}
	return messages
}

// checksum is the unweighted byte sum of all words, little-endian.
func checksum(words []uint32) uint32 {
	var s uint32
	for _, w := range words {
		for i := 0; i < 4; i++ {
			s += (w >> (8 * i)) & 0xFF
		}
	}
	return s
}

// ParseFrame parses seven hex words into a Frame, checking the start and
// end markers, the CRC, and its one's complement.
func ParseFrame(hexWords []string) (Frame, error) {
	if len(hexWords) != frameLen {
		return Frame{}, fmt.Errorf("methane frame needs %d words, got %d", frameLen, len(hexWords))
	}
	words := make([]uint32, frameLen)
	for i, hw := range hexWords {
		v, err := strconv.ParseUint(hw, 16, 32)
		if err != nil {
			return Frame{}, fmt.Errorf("methane frame word %d %q: %w", i, hw, err)
		}
		words[i] = uint32(v)
	}
	if words[0] != startWord || words[frameLen-1] != endWord {
		return Frame{}, fmt.Errorf("methane frame has invalid start or end marker")
	}
	sum := checksum(words[:4])
	if sum != words[4] || sum^0xFFFFFFFF != words[5] {
		return Frame{}, fmt.Errorf("methane frame CRC mismatch")
	}
	return Frame{
		ConcentrationPPM: words[1],
		FaultWord:        words[2],
		TemperatureKx10:  words[3],
		CRC:              words[4],
		InvCRC:           words[5],
	}, nil
}
