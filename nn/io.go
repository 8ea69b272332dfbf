// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/fastnet/internal/serialization"
)

// Header describes a saved network.
type Header = serialization.Header

// TrainingMeta records how a saved network was trained.
type TrainingMeta = serialization.TrainingMeta

// SaveOptions carries the optional parts of a saved file.
type SaveOptions = serialization.WriteOptions

// Save writes a network to a .fnet file.
//
// This is a convenience function that records the topology, every layer's
// activation, trainable flag, bias setting and frozen nodes, and all
// weights, followed by a SHA-256 checksum of the weights.
//
// Example:
//
//	err := nn.Save("model.fnet", net, nn.SaveOptions{
//	    Metadata: map[string]string{"dataset": "xor"},
//	})
func Save(path string, net *Network, opts SaveOptions) error {
	return serialization.Save(path, net, opts)
}

// Load reads a .fnet file and returns a new network together with the
// file's header.
//
// The file is validated completely before the network is returned: magic,
// version, checksum and every tensor shape. Any failure returns a nil
// network.
//
// Example:
//
//	net, header, err := nn.Load("model.fnet")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(header.Topology, header.CreatedAt)
func Load(path string) (*Network, Header, error) {
	m, err := serialization.Load(path)
	if err != nil {
		return nil, Header{}, err
	}
	return m.Network, m.Header, nil
}

// ExportSafeTensors writes the weights of net to a SafeTensors file, for use
// by tools that read that format. The layer configuration is stored in the
// file's metadata.
func ExportSafeTensors(path string, net *Network, metadata map[string]string) error {
	return serialization.ExportSafeTensors(path, net, metadata)
}

// ImportSafeTensors loads weights from a SafeTensors file into net, which
// must already have the stored topology. F64 and F32 tensors are accepted.
// Nothing changes unless every parameter is present with the right shape.
//
// Example:
//
//	net, _ := nn.New([]int{2, 4, 1}, []string{"tansig", "purelin"}, []bool{true, true})
//	metadata, err := nn.ImportSafeTensors("model.safetensors", net)
func ImportSafeTensors(path string, net *Network) (map[string]string, error) {
	return serialization.ImportSafeTensors(path, net)
}
