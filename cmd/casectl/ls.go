package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/report"
)

func newLsCommand(a *app) *cobra.Command {
	var idsOnly bool
	cmd := &cobra.Command{
		Use:   "ls [object-id]",
		Short: "List the children of an object, or the root objects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, _, err := a.openCase(ctx, nil)
			if err != nil {
				return err
			}
			defer c.Close()

			if len(args) == 0 {
				roots, err := c.RootObjects(ctx)
				if err != nil {
					return err
				}
				printRecords(cmd, report.NewRecords(roots))
				return nil
			}

			id, err := parseObjectID(args[0])
			if err != nil {
				return err
			}
			content, err := c.GetContentByID(ctx, id)
			if err != nil {
				return err
			}
			if idsOnly {
				return printChildIDs(ctx, cmd, content)
			}
			children, err := content.Children(ctx)
			if err != nil {
				return err
			}
			printRecords(cmd, report.NewRecords(children))
			return nil
		},
	}
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "Print child IDs only")
	return cmd
}

func printChildIDs(ctx context.Context, cmd *cobra.Command, content simplecase.Content) error {
	ids, err := content.ChildrenIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func printRecords(cmd *cobra.Command, records []report.Record) {
	data := newTableData("ID", "Kind", "Name", "Size", "Type", "Known")
	for _, rec := range records {
		typ := rec.Type
		if rec.FileType != "" {
			typ = string(rec.FileType)
		}
		data.addRow(
			strconv.FormatInt(int64(rec.ID), 10),
			rec.Kind,
			rec.Name,
			strconv.FormatInt(rec.Size, 10),
			typ,
			string(rec.Known),
		)
	}
	printTable(cmd.OutOrStdout(), data)
}

func parseObjectID(raw string) (simplecase.ObjectID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid object id %q", raw)
	}
	return simplecase.ObjectID(id), nil
}
