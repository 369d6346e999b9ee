package signal

import "fmt"

// Geometry describes how a flat word address splits into bank, row and
// column.
//
//	| bank | row | column |
type Geometry struct {
	BankBits int
	RowBits  int
	ColBits  int
}

// Location is a decoded word address.
type Location struct {
	Bank uint8
	Row  uint16
	Col  uint16
}

// Validate checks that every field fits the pins.
func (g Geometry) Validate() error {
	if g.BankBits < 0 || g.BankBits > 2 {
		return fmt.Errorf("bank bits must be between 0 and 2, got %d",
			g.BankBits)
	}

	if g.RowBits <= 0 || g.RowBits > 13 {
		return fmt.Errorf("row bits must be between 1 and 13, got %d",
			g.RowBits)
	}

	if g.ColBits <= 0 || g.ColBits > 10 {
		return fmt.Errorf("column bits must be between 1 and 10, got %d",
			g.ColBits)
	}

	return nil
}

// AddressBits returns the width of a flat word address.
func (g Geometry) AddressBits() int {
	return g.BankBits + g.RowBits + g.ColBits
}

// NumWords returns the number of addressable words.
func (g Geometry) NumWords() uint64 {
	return 1 << uint(g.AddressBits())
}

// Split decodes a word address. Bits above the address width are ignored.
func (g Geometry) Split(addr uint32) Location {
	col := addr & mask(g.ColBits)
	row := (addr >> uint(g.ColBits)) & mask(g.RowBits)
	bank := (addr >> uint(g.ColBits+g.RowBits)) & mask(g.BankBits)

	return Location{Bank: uint8(bank), Row: uint16(row), Col: uint16(col)}
}

// Join is the inverse of Split.
func (g Geometry) Join(loc Location) uint32 {
	addr := uint32(loc.Bank) & mask(g.BankBits)
	addr = addr<<uint(g.RowBits) | uint32(loc.Row)&mask(g.RowBits)
	addr = addr<<uint(g.ColBits) | uint32(loc.Col)&mask(g.ColBits)

	return addr
}

func mask(bits int) uint32 {
	return (1 << uint(bits)) - 1
}
