package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/fastnet/internal/config"
	"github.com/born-ml/fastnet/internal/dataio"
	"github.com/born-ml/fastnet/internal/serialization"
	"github.com/born-ml/fastnet/internal/train"
)

type trainOptions struct {
	config    string
	input     string
	target    string
	valInput  string
	valTarget string
	classes   []string
	valClass  []string
	out       string
}

func newTrainCmd(g *globalFlags) *cobra.Command {
	var opts trainOptions
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a network described by a YAML config",
		Long: `Train a network and save it in .fnet format.

Supply either paired --input/--target CSV files, or one --class CSV file per
class for pattern recognition (targets are +1 for the row's own class and -1
otherwise). Validation data is optional and enables early stopping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, g, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "network and training config (YAML)")
	f.StringVarP(&opts.input, "input", "i", "", "training inputs (CSV)")
	f.StringVarP(&opts.target, "target", "t", "", "training targets (CSV)")
	f.StringVar(&opts.valInput, "val-input", "", "validation inputs (CSV)")
	f.StringVar(&opts.valTarget, "val-target", "", "validation targets (CSV)")
	f.StringArrayVar(&opts.classes, "class", nil, "training inputs of one class (CSV, repeat per class)")
	f.StringArrayVar(&opts.valClass, "val-class", nil, "validation inputs of one class (CSV, repeat per class)")
	f.StringVarP(&opts.out, "out", "o", "model.fnet", "output model file")
	_ = cmd.MarkFlagRequired("config")
	cmd.MarkFlagsRequiredTogether("input", "target")
	cmd.MarkFlagsRequiredTogether("val-input", "val-target")
	cmd.MarkFlagsMutuallyExclusive("input", "class")
	cmd.MarkFlagsOneRequired("input", "class")
	return cmd
}

func runTrain(cmd *cobra.Command, g *globalFlags, opts trainOptions) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	net, err := cfg.Network.Build()
	if err != nil {
		return fmt.Errorf("build network: %w", err)
	}

	rep := g.reporter(cmd.ErrOrStderr())
	tr, err := train.New(net, cfg.Training.TrainConfig(rep))
	if err != nil {
		return err
	}
	rep.Debug("network", "topology", net.Topology(), "activations", net.Activations(),
		"algorithm", cfg.Training.Algorithm)

	var summary train.Summary
	if len(opts.classes) > 0 {
		summary, err = trainPatterns(tr, opts)
	} else {
		summary, err = trainDataset(tr, opts)
	}
	if err != nil {
		return err
	}

	meta := &serialization.TrainingMeta{
		Algorithm:      cfg.Training.Algorithm,
		Epochs:         summary.Epochs,
		FinalLoss:      summary.FinalLoss,
		BestValidation: summary.BestValidation,
		StopReason:     string(summary.StopReason),
		Config:         cfg.Training.Map(),
	}
	if err := serialization.Save(opts.out, net, serialization.WriteOptions{
		Metadata: map[string]string{"config": opts.config},
		Training: meta,
	}); err != nil {
		return err
	}
	rep.Report("saved", "path", opts.out, "epochs", summary.Epochs,
		"mse", summary.FinalLoss, "stop", summary.StopReason)
	return nil
}

func trainDataset(tr *train.Trainer, opts trainOptions) (train.Summary, error) {
	data, err := readDataset(opts.input, opts.target)
	if err != nil {
		return train.Summary{}, err
	}
	val := train.NoData()
	if opts.valInput != "" {
		if val, err = readDataset(opts.valInput, opts.valTarget); err != nil {
			return train.Summary{}, err
		}
	}
	return tr.Train(data, val)
}

func trainPatterns(tr *train.Trainer, opts trainOptions) (train.Summary, error) {
	set, err := readPatterns(opts.classes)
	if err != nil {
		return train.Summary{}, err
	}
	val := train.NoPatterns()
	if len(opts.valClass) > 0 {
		if val, err = readPatterns(opts.valClass); err != nil {
			return train.Summary{}, err
		}
	}
	return tr.TrainPatterns(set, val)
}

func readDataset(inputPath, targetPath string) (train.Dataset, error) {
	inputs, err := dataio.ReadFile(inputPath)
	if err != nil {
		return train.Dataset{}, err
	}
	targets, err := dataio.ReadFile(targetPath)
	if err != nil {
		return train.Dataset{}, err
	}
	return train.NewDataset(inputs, targets), nil
}

func readPatterns(paths []string) (train.PatternSet, error) {
	classes := make([][][]float64, len(paths))
	for i, p := range paths {
		rows, err := dataio.ReadFile(p)
		if err != nil {
			return train.PatternSet{}, err
		}
		classes[i] = rows
	}
	return train.NewPatternSet(classes...), nil
}
