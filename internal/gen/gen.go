// Package gen synthesizes artificial access traces with configurable
// statistical shape for exercising downstream cache and storage simulators.
// All generators emit canonical events with the access index as the
// timestamp, so outputs always start at time zero and never jump backward.
package gen

import (
	"fmt"
	"math/rand"

	"github.com/atfconv/atfconv/pkg/atf"
)

// EventWriter receives generated events. atfio.FileWriter satisfies it.
type EventWriter interface {
	WriteEvent(atf.Event) error
}

// Mode selects how a bimodal trace's second mode relates to its first.
type Mode int

const (
	// ModeFrequency draws both modes from the same elements with
	// independently rolled weights.
	ModeFrequency Mode = iota

	// ModeDistinct gives the second mode a disjoint element range.
	ModeDistinct

	// ModeSubset zeroes roughly half the first mode's weights for the
	// second mode, keeping relative frequencies of the survivors.
	ModeSubset
)

// ParseMode parses the single-letter mode codes used on the command line.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "f":
		return ModeFrequency, nil
	case "d":
		return ModeDistinct, nil
	case "s":
		return ModeSubset, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want f, d, or s)", s)
}

// rollWeights assigns each element a random integer weight in [0, 8].
func rollWeights(rng *rand.Rand, elements int) ([]int, int) {
	weights := make([]int, elements)
	total := 0
	for i := range weights {
		weights[i] = rng.Intn(9)
		total += weights[i]
	}
	return weights, total
}

// pick draws an element index proportionally to its weight.
func pick(rng *rand.Rand, weights []int, total int) int {
	choice := rng.Intn(total + 1)
	for i, w := range weights {
		if w < choice {
			choice -= w
			continue
		}
		return i
	}
	return len(weights) - 1
}

func emit(out EventWriter, address uint64, step int64) error {
	return out.WriteEvent(atf.Event{
		Address:   address,
		Timestamp: step,
		IOType:    atf.Read,
		Size:      1,
		Cost:      1,
	})
}

// Uniform generates length accesses over elements items with random
// per-item popularity.
func Uniform(rng *rand.Rand, elements, length int, out EventWriter) error {
	if elements <= 0 || length < 0 {
		return fmt.Errorf("uniform: need elements > 0 and length >= 0")
	}
	weights, total := rollWeights(rng, elements)
	for i := 0; i < length; i++ {
		if err := emit(out, uint64(pick(rng, weights, total)), int64(i)); err != nil {
			return err
		}
	}
	return nil
}

// Scan generates scans sequential sweeps over elements items.
func Scan(elements, scans int, out EventWriter) error {
	if elements <= 0 || scans < 0 {
		return fmt.Errorf("scan: need elements > 0 and scans >= 0")
	}
	for i := 0; i < elements*scans; i++ {
		if err := emit(out, uint64(i%elements), int64(i)); err != nil {
			return err
		}
	}
	return nil
}

// Modal generates a two-mode trace of 2*length accesses. The full trace
// goes to full; each mode additionally goes to its own half writer so the
// halves can be replayed separately against a simulator.
func Modal(rng *rand.Rand, mode Mode, elements, length int, full, half1, half2 EventWriter) error {
	if elements <= 0 || length < 0 {
		return fmt.Errorf("modal: need elements > 0 and length >= 0")
	}

	weights1, total1 := rollWeights(rng, elements)

	var weights2 []int
	var total2 int
	offset2 := uint64(0)

	switch mode {
	case ModeFrequency:
		weights2, total2 = rollWeights(rng, elements)
	case ModeDistinct:
		weights2, total2 = rollWeights(rng, elements)
		offset2 = uint64(elements)
	case ModeSubset:
		weights2 = make([]int, elements)
		copy(weights2, weights1)
		total2 = total1
		for i := range weights2 {
			if rng.Float64() < 0.5 {
				total2 -= weights2[i]
				weights2[i] = 0
			}
		}
	default:
		return fmt.Errorf("modal: unknown mode %d", mode)
	}

	for i := 0; i < length; i++ {
		addr := uint64(pick(rng, weights1, total1))
		if err := emit(full, addr, int64(i)); err != nil {
			return err
		}
		if err := emit(half1, addr, int64(i)); err != nil {
			return err
		}
	}
	for i := length; i < 2*length; i++ {
		addr := offset2 + uint64(pick(rng, weights2, total2))
		if err := emit(full, addr, int64(i)); err != nil {
			return err
		}
		if err := emit(half2, addr, int64(i)); err != nil {
			return err
		}
	}
	return nil
}
