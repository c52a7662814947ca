// Package cil implements the metadata format layer: tokens, table ids,
// coded indexes, heaps, raw rows and their binary codecs, and metadata
// root parsing.
//
// # Parsing
//
// Parse a metadata image from a backend:
//
//	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A parsed Image exposes the four heaps and the tables stream:
//
//	img.Strings      // #Strings: NUL-terminated UTF-8 records
//	img.Blob         // #Blob: length-prefixed byte records
//	img.Guid         // #GUID: fixed 16-byte records, 1-based index
//	img.UserStrings  // #US: length-prefixed UTF-16 records
//	img.Tables       // #~: decoded raw rows per table
//
// # Row codecs
//
// Every table kind declares its field layout once, and the same
// declaration drives sizing, decoding and encoding. Row sizes depend only
// on TableSizeInfo (row counts and heap widths), never on row content, so
// a table's rows form a dense fixed-stride array:
//
//	sizes := img.Tables.Sizes
//	size := sizes.RowSize(cil.TableTypeDef)
//	row, err := img.Tables.Row(cil.NewToken(cil.TableTypeDef, 1))
//
// # Coded indexes
//
// A coded index packs (table, row) into one integer whose tag width is
// ceil(log2(family size)). The field is 2 bytes unless any participating
// table is too large for the remaining index bits, in which case it widens
// to 4. Index widths therefore change when row counts change, which is why
// the write pipeline recomputes TableSizeInfo from scratch during layout
// planning.
package cil
