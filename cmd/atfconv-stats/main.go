// Package main implements the atfconv-stats binary: it summarizes ATF
// traces into frequency and streak-length CSV rows for the plotting
// tooling.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atfconv/atfconv/internal/atfio"
	"github.com/atfconv/atfconv/internal/stats"
)

func main() {
	kind := flag.String("kind", "freq", "summary kind: freq, streak")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: atfconv-stats [-kind freq|streak] <trace.atf>...\n")
		os.Exit(2)
	}

	for _, path := range flag.Args() {
		if err := summarize(*kind, path); err != nil {
			fmt.Fprintf(os.Stderr, "atfconv-stats: %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func summarize(kind, path string) error {
	r, err := atfio.OpenSource(path)
	if err != nil {
		return err
	}
	defer r.Close()

	s, err := stats.Summarize(r)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	switch kind {
	case "freq":
		return s.WriteFrequencyRow(os.Stdout, name)
	case "streak":
		return s.WriteStreakRow(os.Stdout, name)
	}
	return fmt.Errorf("unknown summary kind %q", kind)
}
