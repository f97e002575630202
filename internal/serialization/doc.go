// Package serialization provides the .born checkpoint container for fitted surrogate networks.
//
// A checkpoint stores the float64 parameters of one or more networks together with a
// JSON description of how to rebuild them (layer specs, normalization parameters):
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00  Magic "BORN"
//	    0x04  Version (uint32 LE)
//	    0x08  Flags (uint32 LE)
//	    0x10  Header size (uint64 LE)
//	    0x18  Data size (uint64 LE)
//	    0x20  SHA-256 of the data section (32 bytes)
//	  [Header: JSON metadata]
//	  [Tensor data: little-endian float64, 64-byte aligned]
//
// Tensors are written in the order given, so the same network always produces the
// same byte stream apart from the creation time.
//
// Example usage:
//
//	err := serialization.WriteFile("ffnn.born", serialization.Header{
//	    ModelType: "FeedForward",
//	    Model:     spec,
//	}, tensors)
//
//	ckpt, err := serialization.ReadFile("ffnn.born")
//	w, err := ckpt.Tensor("dense.0.weight")
package serialization
