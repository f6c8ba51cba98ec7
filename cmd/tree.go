package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/tree/importer"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect and convert structure files",
}

var treeShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a structure and the nodes a diagnosis would cover",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := importer.Load(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.TrimRight(tree.Outline(st), "\n"))
		fmt.Fprintln(out)

		targets := st.Targets()
		fmt.Fprintf(out, "Will diagnose %d node(s):\n", len(targets))
		for i, t := range targets {
			line := fmt.Sprintf("  %d. %s", i+1, strings.Join(t.Path, " › "))
			if adv := diagnosis.CheckCardinality(len(t.Node.Children)); adv != diagnosis.AdvisoryNone {
				line += "  ⚠ " + string(adv)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var treeExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Convert a structure file to another format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := importer.Load(args[0])
		if err != nil {
			return err
		}

		to, _ := cmd.Flags().GetString("to")
		format, err := importer.ParseFormat(to)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := importer.Save(st, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
			return nil
		}

		data, err := importer.Export(st, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	treeExportCmd.Flags().String("to", "yaml", "Output format: json, yaml or md")
	treeExportCmd.Flags().StringP("output", "o", "", "Write to this file; the format follows its extension")

	treeCmd.AddCommand(treeShowCmd)
	treeCmd.AddCommand(treeExportCmd)
}
