package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trviph/linekeeper"
	"github.com/trviph/linekeeper/macro"
)

func newRenderCmd() *cobra.Command {
	var (
		count   int
		counter uint64
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "print the names a template generates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strict {
				if err := macro.Validate(args[0]); err != nil {
					return err
				}
			}
			names := linekeeper.NewNameGenerator(args[0], counter, nil)
			for i := 0; i < count; i++ {
				fmt.Fprintln(cmd.OutOrStdout(), names.Generate())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "c", 3, "number of names to print")
	cmd.Flags().Uint64Var(&counter, "counter", 0, "initial value of %NUM%")
	cmd.Flags().BoolVar(&strict, "strict", true, "reject templates ending inside a macro")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), linekeeper.Version())
		},
	}
}
