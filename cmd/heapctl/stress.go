package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

var (
	stressSize      int
	stressAlignment int
	stressRounds    int
	stressOps       int
	stressMaxAlloc  int
	stressSeed      int64
	stressZero      bool
	stressMapped    bool
	stressBestFit   bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressSize, "size", 1<<20, "Arena size in bytes")
	cmd.Flags().IntVar(&stressAlignment, "alignment", heap.DefaultAlignment, "Block alignment (power of two)")
	cmd.Flags().IntVar(&stressRounds, "rounds", 10, "Number of fill/drain rounds")
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Operations per round")
	cmd.Flags().IntVar(&stressMaxAlloc, "max-alloc", 4096, "Maximum single allocation size")
	cmd.Flags().Int64Var(&stressSeed, "seed", 0, "Random seed (0 = time-based)")
	cmd.Flags().BoolVar(&stressZero, "zero-on-free", false, "Scrub payloads on free")
	cmd.Flags().BoolVar(&stressMapped, "mapped", false, "Back the arena with an anonymous mapping")
	cmd.Flags().BoolVar(&stressBestFit, "best-fit", false, "Use best-fit placement instead of first-fit")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized allocation workload",
		Long: `The stress command drives the allocator with random alloc/free
traffic, validates arena consistency after every round, and reports the
final accounting.

Example:
  heapctl stress
  heapctl stress --size 4194304 --ops 50000 --seed 42
  heapctl stress --mapped --zero-on-free --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

type stressReport struct {
	ArenaSize  int
	Capacity   int
	Seed       int64
	Rounds     int
	OpsPerRun  int
	Duration   string
	AllocFails uint64

	Final heap.Stats
}

func runStress() error {
	seed := stressSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cfg := heap.Config{
		Size:       stressSize,
		Alignment:  stressAlignment,
		ZeroOnFree: stressZero,
	}
	if stressBestFit {
		cfg.Strategy = heap.BestFit
	}

	var (
		h   *heap.Heap
		err error
	)
	if stressMapped {
		h, err = heap.NewMapped(cfg)
	} else {
		h, err = heap.New(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to create arena: %w", err)
	}
	defer h.Close()

	printVerbose("Arena: %s capacity, alignment %d, seed %d\n",
		formatBytes(int64(h.Capacity())), stressAlignment, seed)

	rng := rand.New(rand.NewSource(seed))
	report := stressReport{
		ArenaSize: stressSize,
		Capacity:  h.Capacity(),
		Seed:      seed,
		Rounds:    stressRounds,
		OpsPerRun: stressOps,
	}

	start := time.Now()
	for round := 0; round < stressRounds; round++ {
		var live []heap.Ref
		for op := 0; op < stressOps; op++ {
			if rng.Intn(3) != 0 || len(live) == 0 {
				ref, buf, allocErr := h.Alloc(1 + rng.Intn(stressMaxAlloc))
				if allocErr != nil {
					report.AllocFails++
					continue
				}
				// Touch the payload so mapped pages actually fault in.
				buf[0] = byte(op)
				buf[len(buf)-1] = byte(op)
				live = append(live, ref)
			} else {
				j := rng.Intn(len(live))
				h.Free(live[j])
				live[j] = live[len(live)-1]
				live = live[:len(live)-1]
			}
		}
		for _, ref := range live {
			h.Free(ref)
		}
		if err := h.CheckConsistency(); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		if h.FreeBytes() != h.Capacity() {
			return fmt.Errorf("round %d: arena did not drain: %d of %d bytes free",
				round, h.FreeBytes(), h.Capacity())
		}
		printVerbose("Round %d OK: low point %s free\n",
			round, formatBytes(int64(h.MinEverFreeBytes())))
	}
	report.Duration = time.Since(start).String()
	report.Final = h.Stats()

	if jsonOut {
		return printJSON(report)
	}

	printInfo("\nStress run complete\n")
	printInfo("  Arena: %s (%s usable)\n",
		formatBytes(int64(report.ArenaSize)), formatBytes(int64(report.Capacity)))
	printInfo("  Seed: %d\n", report.Seed)
	printInfo("  Rounds: %d x %d ops in %s\n", report.Rounds, report.OpsPerRun, report.Duration)
	printInfo("  Allocations: %d ok, %d rejected\n", report.Final.Allocs, report.AllocFails)
	printInfo("  Frees: %d\n", report.Final.Frees)
	printInfo("  Low point: %s free\n", formatBytes(int64(report.Final.MinEverFreeBytes)))
	return nil
}
