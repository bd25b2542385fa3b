package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpsemi/semigroups/internal/congruence"
	"github.com/fpsemi/semigroups/pkg/word"
)

var congruenceInputFile string

// presentationFile is the on-disk shape of a congruence's defining data: a
// finite presentation (nrgens, relations) plus the extra pairs generating
// the congruence, and which side to compute it on.
type presentationFile struct {
	NrGens    int             `json:"nrgens"`
	Relations []word.Relation `json:"relations"`
	Extra     []word.Relation `json:"extra"`
	Side      string          `json:"side"` // "left", "right", or "two-sided"
	Words     []word.Word     `json:"words"`
}

func parseSide(s string) (word.Side, error) {
	switch s {
	case "", "two-sided", "twosided", "two_sided":
		return word.TwoSided, nil
	case "left":
		return word.Left, nil
	case "right":
		return word.Right, nil
	default:
		return 0, fmt.Errorf("unknown side %q (want left, right, or two-sided)", s)
	}
}

// congruenceCmd computes the classes of a congruence given directly by a
// presentation, and reports the class index of each word supplied in the
// input file's "words" array.
var congruenceCmd = &cobra.Command{
	Use:   "congruence",
	Short: "Enumerate the classes of a congruence given by a presentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if congruenceInputFile == "" {
			return fmt.Errorf("congruence: -i/--input is required")
		}

		raw, err := os.ReadFile(congruenceInputFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", congruenceInputFile, err)
		}

		var pf presentationFile
		if err := json.Unmarshal(raw, &pf); err != nil {
			return fmt.Errorf("parsing %s: %w", congruenceInputFile, err)
		}

		side, err := parseSide(pf.Side)
		if err != nil {
			return err
		}

		log := GetLogger()
		sink := GetSink()
		cfg := GetConfig()

		opts := congruence.DefaultOptions()
		opts.Sink = sink
		if cfg != nil {
			opts.Threads = cfg.Dispatcher.Threads
			opts.IncludeKnuthBendixStub = cfg.Dispatcher.IncludeKnuthBendixStub
		}

		log.Info("enumerating %s congruence on %d generators (%d relations, %d extra pairs)",
			side, pf.NrGens, len(pf.Relations), len(pf.Extra))

		d, err := congruence.New(side, pf.NrGens, pf.Relations, pf.Extra, opts)
		if err != nil {
			return fmt.Errorf("building dispatcher: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		fmt.Printf("winner:      %s\n", d.Winner())
		fmt.Printf("nr_classes:  %d\n", d.NrClasses())

		for _, w := range pf.Words {
			idx, err := d.WordToClassIndex(ctx, w)
			if err != nil {
				return fmt.Errorf("word %v: %w", w, err)
			}
			fmt.Printf("word %v -> class %d\n", w, idx)
		}

		nontrivial, err := d.NontrivialClasses(ctx)
		if err != nil {
			return fmt.Errorf("computing nontrivial classes: %w", err)
		}
		fmt.Printf("nontrivial_classes: %d\n", len(nontrivial))

		return nil
	},
}

func init() {
	congruenceCmd.Flags().StringVarP(&congruenceInputFile, "input", "i", "", "path to a JSON presentation file")
	rootCmd.AddCommand(congruenceCmd)
}
