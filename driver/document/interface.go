package document

// Document is a decoded document: an ordered-insensitive field map. The
// driver core treats encoded documents as opaque byte regions; this type only
// appears at the API boundary where a codec has decoded them.
type Document map[string]interface{}

// ICodec is the interface for all document codecs. Encoded documents must be
// self-delimiting so that a codec can consume them back-to-back out of a
// reply frame's trailing byte region.
type ICodec interface {
	// Encode serializes a document into a byte array
	// It returns the serialized byte array and an error if any
	Encode(doc Document) ([]byte, error)
	// Decode deserializes the document starting at offset in b.
	// It returns the document and the number of bytes consumed, so that the
	// caller can step through a region of concatenated documents.
	Decode(b []byte, offset int) (Document, int, error)
}
