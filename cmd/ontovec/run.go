package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/checkpoint"
)

func checkpointSave(path string, ckpt *checkpoint.Checkpoint, logger *zap.Logger) error {
	if err := checkpoint.Save(path, ckpt); err != nil {
		return err
	}
	logger.Info("checkpoint written", zap.String("path", path), zap.Int("vocabulary", len(ckpt.Vocabulary)))
	return nil
}

// run is the combined pipeline: train a checkpoint and immediately embed the
// same ontology with it.
func newRunCmd() *cobra.Command {
	var flags trainFlags
	var outputPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train on an ontology and embed it in one invocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ckpt, err := runTraining(logger, &flags)
			if err != nil {
				return err
			}
			if err := checkpointSave(flags.checkpointPath, ckpt, logger); err != nil {
				return err
			}
			return runEmbedding(logger, ckpt, flags.ontologyPath, outputPath)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&outputPath, "output", "embeddings.parquet", "output embedding table path")
	return cmd
}
