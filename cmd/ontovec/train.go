package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/ontovec/internal/checkpoint"
	"github.com/agenthands/ontovec/internal/config"
	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/ontology"
	"github.com/agenthands/ontovec/internal/train"
)

type trainFlags struct {
	ontologyPath   string
	checkpointPath string
	arch           string
	lossVariant    string
	scheme         string
	epochs         int
	learningRate   float64
	margin         float64
	hiddenDim      int
	outputDim      int
	inputDim       int
	layers         int
	seed           int64
}

func (f *trainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ontologyPath, "ontology", "", "path to OWL ontology file (required)")
	cmd.Flags().StringVar(&f.checkpointPath, "checkpoint", "checkpoint.json", "output checkpoint path")
	cmd.Flags().StringVar(&f.arch, "arch", "", "architecture: gcn or gat")
	cmd.Flags().StringVar(&f.lossVariant, "loss", "", "loss: triplet, contrastive, cosine or bce")
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "feature scheme: onehot or hashed")
	cmd.Flags().IntVar(&f.epochs, "epochs", 0, "number of training epochs")
	cmd.Flags().Float64Var(&f.learningRate, "lr", 0, "learning rate")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "margin for triplet/contrastive losses")
	cmd.Flags().IntVar(&f.inputDim, "input-dim", 0, "input dimensionality (hashed scheme)")
	cmd.Flags().IntVar(&f.hiddenDim, "hidden-dim", 0, "hidden dimensionality")
	cmd.Flags().IntVar(&f.outputDim, "output-dim", 0, "output embedding dimensionality")
	cmd.Flags().IntVar(&f.layers, "layers", 0, "number of propagation layers")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed")
	cmd.MarkFlagRequired("ontology")
}

func newTrainCmd() *cobra.Command {
	var flags trainFlags
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on an ontology and write a checkpoint",
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
			return checkpointSave(flags.checkpointPath, ckpt, logger)
		},
	}
	flags.register(cmd)
	return cmd
}

// runTraining parses the ontology, builds the graph and drives the training
// controller. Shared by the train and run commands.
func runTraining(logger *zap.Logger, flags *trainFlags) (*checkpoint.Checkpoint, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyTrainFlags(cfg, flags)

	tcfg, err := cfg.TrainConfig(flags.ontologyPath)
	if err != nil {
		return nil, err
	}

	facts, err := ontology.NewRDFParser().Parse(flags.ontologyPath)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(facts)
	if err != nil {
		return nil, err
	}
	logger.Info("ontology graph built",
		zap.String("source", flags.ontologyPath),
		zap.Int("classes", g.NumNodes()),
		zap.Int("subclass_edges", len(g.Edges)))

	ctrl := train.NewController(logger)
	ckpt, err := ctrl.Train(context.Background(), g, tcfg)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	return ckpt, nil
}

func applyTrainFlags(cfg *config.Config, flags *trainFlags) {
	if flags.arch != "" {
		cfg.Model.Arch = flags.arch
	}
	if flags.lossVariant != "" {
		cfg.Model.Loss = flags.lossVariant
	}
	if flags.scheme != "" {
		cfg.Model.Scheme = flags.scheme
	}
	if flags.epochs > 0 {
		cfg.Training.Epochs = flags.epochs
	}
	if flags.learningRate > 0 {
		cfg.Training.LearningRate = flags.learningRate
	}
	if flags.margin > 0 {
		cfg.Training.Margin = flags.margin
	}
	if flags.inputDim > 0 {
		cfg.Model.InputDim = flags.inputDim
	}
	if flags.hiddenDim > 0 {
		cfg.Model.HiddenDim = flags.hiddenDim
	}
	if flags.outputDim > 0 {
		cfg.Model.OutputDim = flags.outputDim
	}
	if flags.layers > 0 {
		cfg.Model.Layers = flags.layers
	}
	if flags.seed != 0 {
		cfg.Model.Seed = flags.seed
	}
}
