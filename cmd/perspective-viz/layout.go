package main

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/perspective-viz/pkg/perspective"
	"github.com/gilchrisn/perspective-viz/pkg/session"
)

func newLayoutCmd() *cobra.Command {
	var (
		threshold   float64
		deleteEdges float64
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "layout <perspective.json>",
		Short: "Lay out a perspective file and print the scene as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p, err := perspective.LoadFile(args[0])
			if err != nil {
				return err
			}

			view := cfg.ViewOptions()
			if cmd.Flags().Changed("threshold") {
				view.EdgeThreshold = threshold
			}
			if cmd.Flags().Changed("delete-edges") {
				view.DeleteEdgesPercent = deleteEdges
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.RandomSeed()
			}

			sess, err := session.Load(p, view, session.Config{
				Layout:       cfg.LayoutOptions(),
				Boxes:        cfg.BoxOptions(),
				ElectMedoids: cfg.ElectMedoids(),
				EdgeLabels:   cfg.EdgeLabels(),
				Rand:         rand.New(rand.NewSource(seed)),
			})
			if err != nil {
				return fmt.Errorf("laying out %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sess.Snapshot())
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "edge similarity threshold in [0,1]")
	cmd.Flags().Float64Var(&deleteEdges, "delete-edges", 0, "percentage of edges culled at random")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed of the edge cull")
	return cmd
}
