package cil

import "fmt"

// Token is a packed (table id, row id) identifier uniquely addressing one
// metadata row: table id in the high byte, 1-based row id in the low 24
// bits. Row id 0 is reserved and never addresses a row.
type Token uint32

// MaxRID is the largest row id a token can address.
const MaxRID = 0x00FF_FFFF

// NewToken builds a token from a table id and a 1-based row id.
func NewToken(table TableID, rid uint32) Token {
	return Token(uint32(table)<<24 | rid&0x00FF_FFFF)
}

// Table returns the table id encoded in the token.
func (t Token) Table() TableID {
	return TableID(t >> 24)
}

// RID returns the 1-based row id encoded in the token.
func (t Token) RID() uint32 {
	return uint32(t) & 0x00FF_FFFF
}

// IsNil reports whether the token has the reserved row id 0.
func (t Token) IsNil() bool {
	return t.RID() == 0
}

// Value returns the raw 32-bit token value.
func (t Token) Value() uint32 {
	return uint32(t)
}

func (t Token) String() string {
	return fmt.Sprintf("%s[0x%08X]", t.Table(), uint32(t))
}
