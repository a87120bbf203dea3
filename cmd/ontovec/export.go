package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agenthands/ontovec/internal/export"
	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/ontology"
	"github.com/agenthands/ontovec/internal/table"
)

func newExportCmd() *cobra.Command {
	var ontologyPath, tablePath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Push an ontology graph and embedding table into a Bolt graph database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := export.NewBoltDriver(cfg.GraphDB.URI, cfg.GraphDB.User, cfg.GraphDB.Password, logger)
			if err != nil {
				return err
			}
			defer d.Close(ctx)

			if err := d.BuildIndices(ctx); err != nil {
				return err
			}
			exp := export.NewExporter(d)

			if ontologyPath != "" {
				facts, err := ontology.NewRDFParser().Parse(ontologyPath)
				if err != nil {
					return err
				}
				g, err := graph.Build(facts)
				if err != nil {
					return err
				}
				if err := exp.ExportGraph(ctx, g); err != nil {
					return err
				}
			}
			if tablePath != "" {
				t, err := table.Open(tablePath)
				if err != nil {
					return err
				}
				if err := exp.ExportEmbeddings(ctx, t); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ontologyPath, "ontology", "", "OWL file whose class graph gets exported")
	cmd.Flags().StringVar(&tablePath, "table", "", "embedding table whose vectors get attached")
	return cmd
}
