// Package serialization provides the native .fnet format for saving and
// loading trained networks.
//
// The .fnet format is a small binary container holding the network
// configuration and every weight and bias:
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00-0x03  Magic "FNET"
//	    0x04-0x07  Version (uint32 LE)
//	    0x08-0x0B  Flags (uint32 LE)
//	    0x0C-0x0F  Reserved
//	    0x10-0x17  JSON header size (uint64 LE)
//	    0x18-0x1F  Data section size (uint64 LE)
//	    0x20-0x3F  SHA-256 checksum of the data section
//	  [JSON header: topology, layers, tensor table, metadata]
//	  [Padding to a 64-byte boundary]
//	  [Data: float64 LE values, one tensor per parameter]
//
// Loading checks the magic, version, tensor table and checksum, then builds
// a fresh network; any failure aborts the load.
//
// Example usage:
//
//	// Save a trained network
//	err := serialization.Save("xor.fnet", net, serialization.WriteOptions{
//	    Metadata: map[string]string{"dataset": "xor"},
//	})
//
//	// Load it back
//	model, err := serialization.Load("xor.fnet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := model.Network.PropagateInput(x)
//
// Weights can also be exported to SafeTensors for use by other tools, see
// WriteSafeTensors.
package serialization
