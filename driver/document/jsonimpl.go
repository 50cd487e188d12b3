package document

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// lenPrefixSize is the int32 total-length prefix every encoded document
// starts with. The length includes the prefix itself, making documents
// self-delimiting on the wire.
const lenPrefixSize = 4

// NewJSONCodec creates a codec encoding documents as length-prefixed JSON
func NewJSONCodec() ICodec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the ICodec interface using json encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see document.ICodec)
// --------------------------------------------------------------------------

func (j jsonCodecImpl) Encode(doc Document) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, lenPrefixSize+len(body))
	binary.LittleEndian.PutUint32(buf[:lenPrefixSize], uint32(len(buf)))
	copy(buf[lenPrefixSize:], body)
	return buf, nil
}

func (j jsonCodecImpl) Decode(b []byte, offset int) (Document, int, error) {
	if offset < 0 || offset+lenPrefixSize > len(b) {
		return nil, 0, fmt.Errorf("data too short for document length at offset %d", offset)
	}

	total := int(binary.LittleEndian.Uint32(b[offset : offset+lenPrefixSize]))
	if total < lenPrefixSize {
		return nil, 0, fmt.Errorf("invalid document length %d at offset %d", total, offset)
	}
	if offset+total > len(b) {
		return nil, 0, fmt.Errorf("data too short for document body: need %d bytes at offset %d, have %d", total, offset, len(b)-offset)
	}

	var doc Document
	if err := json.Unmarshal(b[offset+lenPrefixSize:offset+total], &doc); err != nil {
		return nil, 0, err
	}
	return doc, total, nil
}
