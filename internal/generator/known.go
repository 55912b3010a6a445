package generator

// MaxSize is the largest size with a reference count on record. Inputs
// beyond it are refused at the boundary rather than left to run for days.
const MaxSize = 18

// knownFree holds published free-polycube counts. Sizes without an
// entry have no reference value, which is not the same as zero.
var knownFree = map[int]uint64{
	1:  1,
	2:  1,
	3:  2,
	4:  8,
	5:  29,
	6:  166,
	7:  1023,
	8:  6922,
	9:  48311,
	10: 346543,
	11: 2522522,
	12: 18598427,
	13: 139333147,
	14: 1056657611,
	15: 8107839447,
	16: 62709211271,
	17: 489997729602,
	18: 3847265309118,
}

// Known returns the reference free-polycube count for a size, when one
// is on record.
func Known(n int) (uint64, bool) {
	v, ok := knownFree[n]
	return v, ok
}
