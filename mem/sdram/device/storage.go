package device

import (
	"fmt"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
)

// storage keeps the cells of the device. A row is only allocated when it is
// first written.
type storage struct {
	geometry signal.Geometry
	rows     map[rowKey][]uint16
}

type rowKey struct {
	bank uint8
	row  uint16
}

func newStorage(geometry signal.Geometry) *storage {
	return &storage{
		geometry: geometry,
		rows:     make(map[rowKey][]uint16),
	}
}

func (s *storage) check(loc signal.Location) error {
	if uint64(loc.Bank) >= 1<<uint(s.geometry.BankBits) ||
		uint64(loc.Row) >= 1<<uint(s.geometry.RowBits) ||
		uint64(loc.Col) >= 1<<uint(s.geometry.ColBits) {
		return fmt.Errorf("cell bank %d row %d col %d is out of range",
			loc.Bank, loc.Row, loc.Col)
	}

	return nil
}

func (s *storage) read(loc signal.Location) (uint16, error) {
	if err := s.check(loc); err != nil {
		return 0, err
	}

	row, ok := s.rows[rowKey{loc.Bank, loc.Row}]
	if !ok {
		return 0, nil
	}

	return row[loc.Col], nil
}

func (s *storage) write(loc signal.Location, value uint16) error {
	if err := s.check(loc); err != nil {
		return err
	}

	key := rowKey{loc.Bank, loc.Row}

	row, ok := s.rows[key]
	if !ok {
		row = make([]uint16, 1<<uint(s.geometry.ColBits))
		s.rows[key] = row
	}

	row[loc.Col] = value

	return nil
}

func (s *storage) allocatedRows() int {
	return len(s.rows)
}
