package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/fastnet/internal/config"
	"github.com/born-ml/fastnet/internal/dataio"
	"github.com/born-ml/fastnet/internal/serialization"
)

func newSimCmd() *cobra.Command {
	var model, input, output string
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Propagate CSV rows through a saved network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := serialization.Load(model)
			if err != nil {
				return err
			}
			rows, err := dataio.ReadFile(input)
			if err != nil {
				return err
			}
			out, err := m.Network.Sim(rows)
			if err != nil {
				return err
			}
			if output == "" {
				return dataio.Write(cmd.OutOrStdout(), out)
			}
			return dataio.WriteFile(output, out)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model file (.fnet)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "input rows (CSV)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (CSV, default stdout)")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe a saved network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := serialization.Load(model)
			if err != nil {
				return err
			}
			h := m.Header

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "model id:\t%s\n", h.ModelID)
			fmt.Fprintf(w, "created:\t%s\n", h.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(w, "written by:\tfastnet %s (format %d)\n", h.FastnetVersion, h.FormatVersion)
			fmt.Fprintf(w, "topology:\t%v\n", h.Topology)
			fmt.Fprintf(w, "loss:\t%s\n", h.Loss)
			fmt.Fprintf(w, "checksum:\t%s\n", m.Checksum)
			for _, k := range slices.Sorted(maps.Keys(h.Metadata)) {
				fmt.Fprintf(w, "meta %s:\t%s\n", k, h.Metadata[k])
			}
			if t := h.Training; t != nil {
				fmt.Fprintf(w, "training:\t%s, %d epochs, mse %g, stop %s\n", t.Algorithm, t.Epochs, t.FinalLoss, t.StopReason)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())
			w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LAYER\tSHAPE\tACTIVATION\tTRAINABLE\tBIAS\tFROZEN")
			for i, l := range h.Layers {
				fmt.Fprintf(w, "%d\t%dx%d\t%s\t%t\t%t\t%v\n",
					i+1, h.Topology[i+1], h.Topology[i], l.Activation, l.Trainable, l.UsingBias, l.FrozenNodes)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model file (.fnet)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newExportCmd() *cobra.Command {
	var model, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved network's weights to SafeTensors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := serialization.Load(model)
			if err != nil {
				return err
			}
			meta := maps.Clone(m.Header.Metadata)
			if meta == nil {
				meta = make(map[string]string)
			}
			meta["model_id"] = m.Header.ModelID.String()
			if err := serialization.ExportSafeTensors(out, m.Network, meta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d parameters to %s\n", len(m.Network.Parameters()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model file (.fnet)")
	cmd.Flags().StringVarP(&out, "out", "o", "model.safetensors", "output file")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newImportCmd() *cobra.Command {
	var cfgPath, weights, out string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a network from a YAML config and load SafeTensors weights into it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			net, err := cfg.Network.Build()
			if err != nil {
				return fmt.Errorf("build network: %w", err)
			}
			meta, err := serialization.ImportSafeTensors(weights, net)
			if err != nil {
				return err
			}
			if meta == nil {
				meta = make(map[string]string)
			}
			meta["imported_from"] = weights
			if err := serialization.Save(out, net, serialization.WriteOptions{Metadata: meta}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d parameters into %s\n", len(net.Parameters()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "network config (YAML)")
	cmd.Flags().StringVarP(&weights, "weights", "w", "", "weights file (.safetensors)")
	cmd.Flags().StringVarP(&out, "out", "o", "model.fnet", "output model file")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("weights")
	return cmd
}
