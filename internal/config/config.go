package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/ontovec/internal/graph"
	"github.com/agenthands/ontovec/internal/loss"
	"github.com/agenthands/ontovec/internal/model"
	"github.com/agenthands/ontovec/internal/train"
)

type ModelConfig struct {
	Arch      string `toml:"arch"`
	InputDim  int    `toml:"input_dim"`
	HiddenDim int    `toml:"hidden_dim"`
	OutputDim int    `toml:"output_dim"`
	Layers    int    `toml:"layers"`
	Loss      string `toml:"loss"`
	Scheme    string `toml:"scheme"`
	Seed      int64  `toml:"seed"`
}

type TrainingConfig struct {
	Epochs        int     `toml:"epochs"`
	LearningRate  float64 `toml:"learning_rate"`
	Margin        float64 `toml:"margin"`
	NegativeRatio int     `toml:"negative_ratio"`
}

type GraphDBConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type Config struct {
	Model    ModelConfig    `toml:"model"`
	Training TrainingConfig `toml:"training"`
	GraphDB  GraphDBConfig  `toml:"graphdb"`
	Server   ServerConfig   `toml:"server"`
}

// Default is a workable starting configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Arch:      string(model.ArchGCN),
			InputDim:  64,
			HiddenDim: 32,
			OutputDim: 16,
			Layers:    2,
			Loss:      string(loss.VariantContrastive),
			Scheme:    string(graph.SchemeHashed),
			Seed:      42,
		},
		Training: TrainingConfig{
			Epochs:        100,
			LearningRate:  0.01,
			Margin:        1.0,
			NegativeRatio: 1,
		},
		GraphDB: GraphDBConfig{
			URI: "bolt://localhost:7687",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config fields from ONTOVEC_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ONTOVEC_GRAPHDB_URI"); v != "" {
		c.GraphDB.URI = v
	}
	if v := os.Getenv("ONTOVEC_GRAPHDB_USER"); v != "" {
		c.GraphDB.User = v
	}
	if v := os.Getenv("ONTOVEC_GRAPHDB_PASSWORD"); v != "" {
		c.GraphDB.Password = v
	}
	if v := os.Getenv("ONTOVEC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ONTOVEC_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Model.Seed = seed
		}
	}
}

// TrainConfig assembles the validated training configuration.
func (c *Config) TrainConfig(source string) (train.Config, error) {
	tc := train.Config{
		Model: model.Config{
			Arch:      model.Arch(c.Model.Arch),
			InputDim:  c.Model.InputDim,
			HiddenDim: c.Model.HiddenDim,
			OutputDim: c.Model.OutputDim,
			Layers:    c.Model.Layers,
			Loss:      loss.Variant(c.Model.Loss),
			Scheme:    graph.Scheme(c.Model.Scheme),
			Seed:      c.Model.Seed,
		},
		Epochs:        c.Training.Epochs,
		LearningRate:  c.Training.LearningRate,
		Margin:        c.Training.Margin,
		NegativeRatio: c.Training.NegativeRatio,
		Source:        source,
	}
	if err := tc.Validate(); err != nil {
		return train.Config{}, err
	}
	return tc, nil
}
