package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/ontovec/internal/embed"
	"github.com/agenthands/ontovec/internal/table"
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect and do vector arithmetic on embedding tables",
	}
	cmd.AddCommand(newTableInspectCmd())
	cmd.AddCommand(newTableIdsCmd())
	cmd.AddCommand(newTableGetCmd())
	cmd.AddCommand(newTableMathCmd())
	return cmd
}

func openTable(path string) (*table.Table, error) {
	t, err := table.Open(path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func newTableInspectCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print table metadata and row count",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTable(path)
			if err != nil {
				return err
			}
			m := t.Meta()
			fmt.Printf("source ontology: %s\n", m.SourceOntology)
			fmt.Printf("architecture:    %s\n", m.Arch)
			fmt.Printf("loss:            %s\n", m.Loss)
			fmt.Printf("feature scheme:  %s\n", m.Scheme)
			fmt.Printf("output dim:      %d\n", m.OutputDim)
			fmt.Printf("checkpoint run:  %s\n", m.CheckpointRun)
			fmt.Printf("generated at:    %s\n", m.GeneratedAt.Format(time.RFC3339))
			fmt.Printf("rows:            %d\n", t.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "table", "", "path to embedding table (required)")
	cmd.MarkFlagRequired("table")
	return cmd
}

func newTableIdsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "List all identifiers in the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTable(path)
			if err != nil {
				return err
			}
			for _, id := range t.Identifiers() {
				fmt.Println(id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "table", "", "path to embedding table (required)")
	cmd.MarkFlagRequired("table")
	return cmd
}

func newTableGetCmd() *cobra.Command {
	var path, id string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print one vector by identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTable(path)
			if err != nil {
				return err
			}
			vec, ok := t.Get(id)
			if !ok {
				return fmt.Errorf("identifier '%s' not found in table", id)
			}
			fmt.Println(formatVector(vec))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "table", "", "path to embedding table (required)")
	cmd.Flags().StringVar(&id, "id", "", "class identifier (required)")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("id")
	return cmd
}

// math evaluates a binary vector operation over two identifiers. add and sub
// results can be written out as a single-row derived table; cosine and
// nearest print to stdout.
func newTableMathCmd() *cobra.Command {
	var path, op, a, b, out string
	var k int
	cmd := &cobra.Command{
		Use:   "math",
		Short: "Vector arithmetic: add, sub, cosine or nearest over table rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTable(path)
			if err != nil {
				return err
			}
			va, ok := t.Get(a)
			if !ok {
				return fmt.Errorf("identifier '%s' not found in table", a)
			}

			switch op {
			case "add", "sub":
				vb, ok := t.Get(b)
				if !ok {
					return fmt.Errorf("identifier '%s' not found in table", b)
				}
				var res []float64
				if op == "add" {
					res, err = table.Add(va, vb)
				} else {
					res, err = table.Sub(va, vb)
				}
				if err != nil {
					return err
				}
				if out != "" {
					rec := []embed.Record{{ID: fmt.Sprintf("%s(%s,%s)", op, a, b), Vector: res}}
					meta := t.Meta()
					meta.GeneratedAt = time.Now().UTC()
					return table.Write(out, rec, meta)
				}
				fmt.Println(formatVector(res))
			case "cosine":
				vb, ok := t.Get(b)
				if !ok {
					return fmt.Errorf("identifier '%s' not found in table", b)
				}
				c, err := table.Cosine(va, vb)
				if err != nil {
					return err
				}
				fmt.Printf("%.6f\n", c)
			case "nearest":
				for _, n := range t.Nearest(va, k) {
					fmt.Printf("%.6f  %s\n", n.Score, n.ID)
				}
			default:
				return fmt.Errorf("unknown operation '%s' (want add, sub, cosine or nearest)", op)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "table", "", "path to embedding table (required)")
	cmd.Flags().StringVar(&op, "op", "cosine", "operation: add, sub, cosine or nearest")
	cmd.Flags().StringVar(&a, "a", "", "first identifier (required)")
	cmd.Flags().StringVar(&b, "b", "", "second identifier (binary ops)")
	cmd.Flags().StringVar(&out, "out", "", "write add/sub result to a derived table file")
	cmd.Flags().IntVar(&k, "k", 5, "neighbor count for nearest")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("a")
	return cmd
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
