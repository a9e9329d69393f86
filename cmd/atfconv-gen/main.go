// Package main implements the atfconv-gen binary: it synthesizes ATF trace
// files with uniform-random, bimodal, or scanning access patterns.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/atfconv/atfconv/internal/atfio"
	"github.com/atfconv/atfconv/internal/gen"
)

func main() {
	var (
		kind     = flag.String("kind", "uniform", "generator kind: uniform, modal, scan")
		out      = flag.String("out", "", "output path without extension (gains .atf)")
		elements = flag.Int("elements", 200, "number of distinct elements")
		length   = flag.Int("length", 1600, "accesses per trace (per mode for modal)")
		mode     = flag.String("mode", "f", "modal mode: f (frequency), d (distinct), s (subset)")
		scans    = flag.Int("scans", 10, "number of sweeps for scan traces")
		seed     = flag.Int64("seed", 0, "random seed (0 uses the current time)")
	)
	flag.Parse()

	if *out == "" {
		fmt.Fprintf(os.Stderr, "usage: atfconv-gen -kind <uniform|modal|scan> -out <name> [options]\n")
		os.Exit(2)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var err error
	switch *kind {
	case "uniform":
		err = writeTrace(*out+".atf", func(w *atfio.FileWriter) error {
			return gen.Uniform(rng, *elements, *length, w)
		})
	case "scan":
		err = writeTrace(*out+".atf", func(w *atfio.FileWriter) error {
			return gen.Scan(*elements, *scans, w)
		})
	case "modal":
		err = generateModal(rng, *mode, *out, *elements, *length)
	default:
		err = fmt.Errorf("unknown generator kind %q", *kind)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "atfconv-gen: %v\n", err)
		os.Exit(1)
	}
}

func writeTrace(path string, fill func(*atfio.FileWriter) error) error {
	w, err := atfio.CreateFile(path, false)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := fill(w); err != nil {
		return err
	}
	return w.Commit()
}

// generateModal writes the full trace plus each half, matching the fixed
// naming scheme downstream comparison scripts rely on.
func generateModal(rng *rand.Rand, modeCode, out string, elements, length int) error {
	mode, err := gen.ParseMode(modeCode)
	if err != nil {
		return err
	}

	writers := make([]*atfio.FileWriter, 0, 3)
	defer func() {
		for _, w := range writers {
			w.Close()
		}
	}()

	paths := []string{out + ".atf", out + "-1.atf", out + "-2.atf"}
	for _, p := range paths {
		w, err := atfio.CreateFile(p, false)
		if err != nil {
			return err
		}
		if err := w.WriteHeader(); err != nil {
			return err
		}
		writers = append(writers, w)
	}

	if err := gen.Modal(rng, mode, elements, length, writers[0], writers[1], writers[2]); err != nil {
		return err
	}
	for _, w := range writers {
		if err := w.Commit(); err != nil {
			return err
		}
	}
	return nil
}
