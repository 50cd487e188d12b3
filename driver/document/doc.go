// Package document defines the document codec consumed by the driver core.
// Query filters and result documents cross the wire as opaque, self-delimiting
// byte regions; the codec converts between those regions and the Document map
// type.
//
// The package provides:
//
//   - ICodec: the codec contract (encode one document, decode one document at
//     an offset reporting bytes consumed).
//
//   - NewJSONCodec: a length-prefixed JSON implementation. Each encoded
//     document starts with an int32 little endian total length (prefix
//     included), so documents can be concatenated back-to-back and walked
//     without a separate index.
package document
