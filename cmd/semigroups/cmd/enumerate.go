package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpsemi/semigroups/internal/element"
	"github.com/fpsemi/semigroups/internal/froidurepin"
)

var enumerateInputFile string

// enumerateCmd runs a Froidure-Pin enumeration over a transformation
// monoid given as a JSON list of generator image-vectors, e.g.
// [[1,2,0],[0,0,2]] for two degree-3 transformations.
var enumerateCmd = &cobra.Command{
	Use:   "enumerate",
	Short: "Enumerate the transformation monoid generated by a set of generators",
	RunE: func(cmd *cobra.Command, args []string) error {
		if enumerateInputFile == "" {
			return fmt.Errorf("enumerate: -i/--input is required")
		}

		raw, err := os.ReadFile(enumerateInputFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", enumerateInputFile, err)
		}

		var images [][]uint16
		if err := json.Unmarshal(raw, &images); err != nil {
			return fmt.Errorf("parsing %s as a JSON array of image vectors: %w", enumerateInputFile, err)
		}
		if len(images) == 0 {
			return fmt.Errorf("enumerate: %s contains no generators", enumerateInputFile)
		}

		generators := make([]element.Transformation, len(images))
		for i, img := range images {
			generators[i] = element.NewTransformation(img)
		}

		log := GetLogger()
		cfg := GetConfig()
		fpCfg := froidurepin.DefaultConfig()
		if cfg != nil && cfg.FroidurePin.BatchSize > 0 {
			fpCfg.BatchSize = cfg.FroidurePin.BatchSize
		}

		eng, err := froidurepin.New[element.Transformation](element.TransformationOps{}, generators, fpCfg)
		if err != nil {
			return fmt.Errorf("building enumeration engine: %w", err)
		}

		log.Info("enumerating transformation monoid on %d generators of degree %d", eng.NrGens(), eng.Degree())
		eng.Enumerate(-1)

		idempotentThreads := 1
		if cfg != nil && cfg.FroidurePin.IdempotentThreads > 0 {
			idempotentThreads = cfg.FroidurePin.IdempotentThreads
		}

		fmt.Printf("size:        %d\n", eng.Size())
		fmt.Printf("nr_rules:    %d\n", eng.NrRules())
		fmt.Printf("idempotents: %d\n", eng.NrIdempotentsReporting(idempotentThreads, GetSink()))
		for _, pair := range eng.DuplicateGenerators() {
			fmt.Printf("duplicate generator pair: %v\n", pair)
		}

		return nil
	},
}

func init() {
	enumerateCmd.Flags().StringVarP(&enumerateInputFile, "input", "i", "", "path to a JSON file containing an array of generator image vectors")
	rootCmd.AddCommand(enumerateCmd)
}
