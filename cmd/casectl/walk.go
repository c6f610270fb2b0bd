package main

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/report"
	"github.com/tendant/simple-case/pkg/simplecase/scan"
)

func newWalkCommand(a *app) *cobra.Command {
	var (
		maxDepth      int
		progressEvery int
	)
	cmd := &cobra.Command{
		Use:   "walk <object-id>",
		Short: "Walk the tree under an object and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseObjectID(args[0])
			if err != nil {
				return err
			}
			c, _, err := a.openCase(ctx, nil)
			if err != nil {
				return err
			}
			defer c.Close()

			root, err := c.GetContentByID(ctx, id)
			if err != nil {
				return err
			}

			counter := report.NewKindCounter()
			summer := report.NewSizeSummer()
			visitor := simplecase.ContentFunc(func(content simplecase.Content) error {
				return errors.Join(content.AcceptContent(counter), content.AcceptContent(summer))
			})

			result, err := scan.New(a.logger).Walk(ctx, root, scan.WalkOptions{
				Visitor:       visitor,
				MaxDepth:      maxDepth,
				ProgressEvery: progressEvery,
				OnProgress: func(visited, failed int64) {
					a.logger.Info("walk progress", "visited", visited, "failed", failed)
				},
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			printWalkSummary(cmd, result, counter, summer)
			return err
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum depth below the object (0 for unlimited)")
	cmd.Flags().IntVar(&progressEvery, "progress-every", 1000, "Log progress every N entities")
	return cmd
}

func printWalkSummary(cmd *cobra.Command, result *scan.WalkResult, counter *report.KindCounter, summer *report.SizeSummer) {
	out := cmd.OutOrStdout()
	failed := make([]string, 0, len(result.FailedIDs))
	for _, id := range result.FailedIDs {
		failed = append(failed, strconv.FormatInt(int64(id), 10))
	}
	printPairs(out, [][2]string{
		{"Visited", strconv.FormatInt(result.TotalVisited, 10)},
		{"Failed", strconv.FormatInt(result.TotalFailed, 10)},
		{"Deepest level", strconv.Itoa(result.DeepestLevel)},
		{"Files", strconv.Itoa(summer.Files)},
		{"Total bytes", strconv.FormatInt(summer.Bytes, 10)},
		{"Failed IDs", strings.Join(failed, ",")},
	})

	kinds := make([]string, 0, len(counter.Counts))
	for kind := range counter.Counts {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	data := newTableData("Kind", "Count")
	for _, kind := range kinds {
		data.addRow(kind, strconv.Itoa(counter.Counts[kind]))
	}
	cmd.Println()
	printTable(out, data)
}
