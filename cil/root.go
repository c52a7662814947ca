package cil

import (
	"strings"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/cil/internal/binary"
	"github.com/cilforge/cilmeta/errors"
)

// StreamHeader describes one stream of the metadata root. Offset is
// relative to the start of the root.
type StreamHeader struct {
	Offset uint32
	Size   uint32
	Name   string
}

// Root is the parsed metadata root header.
type Root struct {
	MajorVersion uint16
	MinorVersion uint16
	Version      string
	Flags        uint16
	Streams      []StreamHeader
}

// Stream returns the header of the named stream, or nil.
func (r *Root) Stream(name string) *StreamHeader {
	for i := range r.Streams {
		if r.Streams[i].Name == name {
			return &r.Streams[i]
		}
	}
	return nil
}

// Image is a fully parsed metadata image: the root plus every heap and the
// tables stream. Immutable once constructed.
type Image struct {
	Root        Root
	Strings     *StringHeap
	Blob        *BlobHeap
	Guid        *GuidHeap
	UserStrings *UserStringHeap
	Tables      *TablesStream
}

// Open parses a metadata image from a backend. Any structural defect
// aborts the whole load; there is no partial image.
func Open(b cilmeta.Backend) (*Image, error) {
	root, err := parseRoot(b)
	if err != nil {
		return nil, err
	}

	img := &Image{Root: *root}

	// Missing heaps behave as empty: table rows may still carry offset 0.
	img.Strings = NewStringHeap(nil)
	img.Blob = NewBlobHeap(nil)
	img.Guid, _ = NewGuidHeap(nil)
	img.UserStrings, _ = NewUserStringHeap(nil)

	var tablesData []byte
	for _, sh := range root.Streams {
		data, err := b.Slice(int(sh.Offset), int(sh.Size))
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindOutOfBounds).
				Path("root", sh.Name).
				Cause(err).
				Detail("stream extent outside image").
				Build()
		}
		switch sh.Name {
		case StreamStrings:
			img.Strings = NewStringHeap(data)
		case StreamBlob:
			img.Blob = NewBlobHeap(data)
		case StreamGuid:
			img.Guid, err = NewGuidHeap(data)
		case StreamUserStrings:
			img.UserStrings, err = NewUserStringHeap(data)
		case StreamTables, StreamTablesUncomp:
			tablesData = data
		}
		if err != nil {
			return nil, err
		}
	}

	if tablesData == nil {
		return nil, errors.Malformed(errors.PhaseParse, "image has no tables stream")
	}
	img.Tables, err = ParseTablesStream(tablesData)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func parseRoot(b cilmeta.Backend) (*Root, error) {
	r := binary.NewReader(b.Data())

	magic, err := r.ReadU32()
	if err != nil {
		return nil, rootError(r, err, "magic")
	}
	if magic != RootMagic {
		return nil, errors.Malformed(errors.PhaseParse, "bad metadata signature 0x%08X", magic)
	}
	root := &Root{}
	if root.MajorVersion, err = r.ReadU16(); err != nil {
		return nil, rootError(r, err, "version")
	}
	if root.MinorVersion, err = r.ReadU16(); err != nil {
		return nil, rootError(r, err, "version")
	}
	if _, err = r.ReadU32(); err != nil { // reserved
		return nil, rootError(r, err, "reserved")
	}
	verLen, err := r.ReadU32()
	if err != nil {
		return nil, rootError(r, err, "version length")
	}
	if verLen > 255 || verLen%4 != 0 {
		return nil, errors.Malformed(errors.PhaseParse, "version string length %d invalid", verLen)
	}
	verBytes, err := r.ReadBytes(int(verLen))
	if err != nil {
		return nil, rootError(r, err, "version string")
	}
	root.Version = strings.TrimRight(string(verBytes), "\x00")

	if root.Flags, err = r.ReadU16(); err != nil {
		return nil, rootError(r, err, "flags")
	}
	streamCount, err := r.ReadU16()
	if err != nil {
		return nil, rootError(r, err, "stream count")
	}
	if streamCount > 64 {
		return nil, errors.Malformed(errors.PhaseParse, "implausible stream count %d", streamCount)
	}

	for i := 0; i < int(streamCount); i++ {
		var sh StreamHeader
		if sh.Offset, err = r.ReadU32(); err != nil {
			return nil, rootError(r, err, "stream offset")
		}
		if sh.Size, err = r.ReadU32(); err != nil {
			return nil, rootError(r, err, "stream size")
		}
		if sh.Name, err = r.ReadCString(); err != nil {
			return nil, rootError(r, err, "stream name")
		}
		if err = r.Align(4); err != nil {
			return nil, rootError(r, err, "stream header padding")
		}
		root.Streams = append(root.Streams, sh)
	}
	return root, nil
}

func rootError(r *binary.Reader, err error, what string) error {
	return errors.New(errors.PhaseParse, errors.KindMalformed).
		Path("root", what).
		Offset(int64(r.Position())).
		Cause(err).
		Detail("metadata root header").
		Build()
}

// EncodeRoot encodes a metadata root header for the given version string
// and stream table. Stream offsets must already be final.
func EncodeRoot(major, minor uint16, version string, flags uint16, streams []StreamHeader) []byte {
	w := binary.NewWriter()
	w.U32(RootMagic)
	w.U16(major)
	w.U16(minor)
	w.U32(0)

	verLen := (len(version) + 1 + 3) &^ 3
	w.U32(uint32(verLen))
	w.WriteBytes([]byte(version))
	for i := len(version); i < verLen; i++ {
		w.U8(0)
	}

	w.U16(flags)
	w.U16(uint16(len(streams)))
	for _, sh := range streams {
		w.U32(sh.Offset)
		w.U32(sh.Size)
		w.CString(sh.Name)
		w.Pad(4)
	}
	return w.Bytes()
}

// RootSize returns the encoded size of a root header with the given
// version and stream names. Must agree with EncodeRoot.
func RootSize(version string, streamNames []string) uint32 {
	size := uint32(16) + uint32((len(version)+1+3)&^3) + 4
	for _, name := range streamNames {
		size += 8 + uint32((len(name)+1+3)&^3)
	}
	return size
}
