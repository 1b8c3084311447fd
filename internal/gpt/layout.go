package gpt

const (
	// SectorSize is the logical block size the table is laid out for.
	SectorSize = 512
	// TableSectors is the space taken by the MBR, the header and the entry array.
	TableSectors = 34
	// FirstUsableLBA is the first sector a partition may start at.
	FirstUsableLBA = TableSectors
)

// Range is a placed partition. Both bounds are inclusive.
type Range struct {
	Name     string
	FirstLBA uint64
	LastLBA  uint64
}

// Sectors returns the number of sectors covered by the range.
func (r Range) Sectors() uint64 {
	return r.LastLBA - r.FirstLBA + 1
}

// Size returns the size of the range in bytes.
func (r Range) Size() uint64 {
	return r.Sectors() * SectorSize
}

// Allocator places plan entries one after the other, starting at LBA 0.
type Allocator struct {
	total  uint64
	cursor uint64
}

func NewAllocator(totalSectors uint64) *Allocator {
	return &Allocator{total: totalSectors}
}

// Cursor returns the next LBA the allocator would place a partition at.
func (a *Allocator) Cursor() uint64 {
	return a.cursor
}

// Place consumes the next spec. Spacers only move the cursor and report
// placed == false.
func (a *Allocator) Place(s PartitionSpec) (r Range, placed bool, err error) {
	size := s.Sectors(a.total, a.cursor)

	if s.Policy == PolicySpacer {
		a.cursor += size
		return Range{}, false, nil
	}

	if a.cursor < FirstUsableLBA {
		return Range{}, false, &PlacementError{Name: s.Name, Err: ErrPartitionOverlap}
	}

	if size == 0 {
		if s.Fills() {
			return Range{}, false, &PlacementError{Name: s.Name, Err: ErrPartitionTooLarge}
		}
		return Range{}, false, &PlacementError{Name: s.Name, Err: ErrEmptyPartition}
	}

	last := a.cursor + size - 1
	if a.total == 0 || last > a.total-1 {
		return Range{}, false, &PlacementError{Name: s.Name, Err: ErrPartitionTooLarge}
	}

	r = Range{
		Name:     s.Name,
		FirstLBA: a.cursor,
		LastLBA:  last,
	}
	a.cursor += size
	return r, true, nil
}

// Allocate resolves the whole plan against a device of totalSectors sectors.
// The first placement failure aborts the allocation.
func Allocate(totalSectors uint64, plan Plan) ([]Range, error) {
	a := NewAllocator(totalSectors)

	ranges := make([]Range, 0, plan.Partitions())
	for _, s := range plan {
		r, placed, err := a.Place(s)
		if err != nil {
			return nil, err
		}
		if placed {
			ranges = append(ranges, r)
		}
	}
	return ranges, nil
}
