package backend

import (
	"github.com/markovkit/markovkit/pkg/errors"
)

// deviceArena models accelerator memory as two pre-allocated slabs (one for
// probability/value words, one for index words) carved out by a bump
// allocator. Staged tables live for the whole solve; Reset reclaims
// everything at once.
type deviceArena struct {
	words     []float64
	indexes   []int32
	wordsUsed int
	indexUsed int
}

func newDeviceArena(wordCapacity, indexCapacity int) (*deviceArena, error) {
	if wordCapacity <= 0 || indexCapacity <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.AllocationFailed, "device arena capacity must be positive"),
			errors.Fields{"words": wordCapacity, "indexes": indexCapacity},
		)
	}
	return &deviceArena{
		words:   make([]float64, wordCapacity),
		indexes: make([]int32, indexCapacity),
	}, nil
}

// allocWords reserves a region of the word slab.
func (a *deviceArena) allocWords(size int) ([]float64, error) {
	if a.wordsUsed+size > len(a.words) {
		return nil, errors.WithFields(
			errors.New(errors.AllocationFailed, "device word memory exhausted"),
			errors.Fields{"requested": size, "used": a.wordsUsed, "capacity": len(a.words)},
		)
	}
	region := a.words[a.wordsUsed : a.wordsUsed+size : a.wordsUsed+size]
	a.wordsUsed += size
	return region, nil
}

func (a *deviceArena) allocIndexes(size int) ([]int32, error) {
	if a.indexUsed+size > len(a.indexes) {
		return nil, errors.WithFields(
			errors.New(errors.AllocationFailed, "device index memory exhausted"),
			errors.Fields{"requested": size, "used": a.indexUsed, "capacity": len(a.indexes)},
		)
	}
	region := a.indexes[a.indexUsed : a.indexUsed+size : a.indexUsed+size]
	a.indexUsed += size
	return region, nil
}

// upload copies host data into a device region. A size mismatch means the
// region was staged against the wrong table.
func upload[T float64 | int32](dst, src []T) error {
	if len(dst) != len(src) {
		return errors.WithFields(
			errors.New(errors.TransferFailed, "host/device size mismatch"),
			errors.Fields{"host": len(src), "device": len(dst)},
		)
	}
	copy(dst, src)
	return nil
}

func (a *deviceArena) reset() {
	a.wordsUsed = 0
	a.indexUsed = 0
}
