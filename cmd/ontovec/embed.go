package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/checkpoint"
	"github.com/agenthands/ontovec/internal/embed"
	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/ontology"
	"github.com/agenthands/ontovec/internal/table"
)

func newEmbedCmd() *cobra.Command {
	var (
		checkpointPath string
		ontologyPath   string
		outputPath     string
	)
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed an ontology's classes with a trained checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ckpt, err := checkpoint.Load(checkpointPath)
			if err != nil {
				return err
			}
			return runEmbedding(logger, ckpt, ontologyPath, outputPath)
		},
	}
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "path to trained checkpoint (required)")
	cmd.Flags().StringVar(&ontologyPath, "ontology", "", "path to target OWL ontology file (required)")
	cmd.Flags().StringVar(&outputPath, "output", "embeddings.parquet", "output embedding table path")
	cmd.MarkFlagRequired("checkpoint")
	cmd.MarkFlagRequired("ontology")
	return cmd
}

// runEmbedding builds the target graph, aligns it against the checkpoint and
// persists the resulting table. Shared by the embed and run commands.
func runEmbedding(logger *zap.Logger, ckpt *checkpoint.Checkpoint, ontologyPath, outputPath string) error {
	facts, err := ontology.NewRDFParser().Parse(ontologyPath)
	if err != nil {
		return err
	}
	g, err := graph.Build(facts)
	if err != nil {
		return err
	}

	gen := embed.NewGenerator(logger)
	records, meta, err := gen.Generate(ckpt, g)
	if err != nil {
		return fmt.Errorf("embedding generation failed: %w", err)
	}
	meta.SourceOntology = ontologyPath

	if err := table.Write(outputPath, records, meta); err != nil {
		return err
	}
	logger.Info("embedding table written",
		zap.String("path", outputPath),
		zap.Int("rows", len(records)),
		zap.Int("output_dim", meta.OutputDim))
	return nil
}
