package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/northpole-labs/santa"
	"github.com/spf13/cobra"
)

var (
	reindeerCount int
	elfCount      int
	elfGroupSize  int
	duration      time.Duration
	quiet         bool
)

// consoleObserver narrates protocol events to stderr.
type consoleObserver struct {
	log *log.Logger
}

func (o consoleObserver) Arrived(kind santa.Kind, id int) {
	o.log.Printf("%s %d: arrived", kind, id)
}

func (o consoleObserver) Released(kind santa.Kind, id int) {
	switch kind {
	case santa.KindReindeer:
		o.log.Printf("reindeer %d: getting harnessed to the sleigh", id)
	default:
		o.log.Printf("elf %d: getting help from santa", id)
	}
}

func (o consoleObserver) SessionClosed(kind santa.Kind, served int) {
	switch kind {
	case santa.KindReindeer:
		o.log.Printf("santa: sleigh ready, delivered toys with %d reindeer", served)
	default:
		o.log.Printf("santa: consultation with %d elves complete", served)
	}
}

var rootCmd = &cobra.Command{
	Use:   "santasim",
	Short: "Run the Santa Claus rendezvous simulation",
	Long: `santasim runs the classic Santa Claus coordination problem: a sleeping
dispatcher woken either by the full reindeer team or by a group of elves,
with strict reindeer priority and one session at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := &santa.Recorder{}
		var obs santa.Observer = rec
		if !quiet {
			obs = santa.MultiObserver{rec, consoleObserver{log: log.New(os.Stderr, "", log.Ltime)}}
		}

		sim, err := santa.New(santa.Config{
			ReindeerCount: reindeerCount,
			ElfCount:      elfCount,
			ElfGroupSize:  elfGroupSize,
			RunDuration:   duration,
			Observer:      obs,
		})
		if err != nil {
			return err
		}

		if err := sim.Run(cmd.Context()); err != nil {
			return err
		}

		fmt.Printf("deliveries:    %d\n", sim.Stats().Deliveries())
		fmt.Printf("consultations: %d\n", sim.Stats().Consultations())
		fmt.Printf("reindeer harnessed: %d across %d sessions\n",
			rec.Served(santa.KindReindeer), rec.Sessions(santa.KindReindeer))
		fmt.Printf("elves consulted:    %d across %d sessions\n",
			rec.Served(santa.KindElf), rec.Sessions(santa.KindElf))
		return nil
	},
}

func init() {
	rootCmd.Flags().IntVar(&reindeerCount, "reindeer", 9, "reindeer team size")
	rootCmd.Flags().IntVar(&elfCount, "elves", 10, "elf population size")
	rootCmd.Flags().IntVar(&elfGroupSize, "group", 3, "elves per consultation")
	rootCmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "how long to run")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-event narration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
