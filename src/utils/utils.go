package utils

import "slices"

// InsertSorted adds floor to an ascending slice unless it is already present.
func InsertSorted(floors []int, floor int) []int {
	idx, found := slices.BinarySearch(floors, floor)
	if found {
		return floors
	}
	return slices.Insert(floors, idx, floor)
}

// RemoveSorted drops floor from an ascending slice if present.
func RemoveSorted(floors []int, floor int) []int {
	idx, found := slices.BinarySearch(floors, floor)
	if !found {
		return floors
	}
	return slices.Delete(floors, idx, idx+1)
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ForEachIndex is a helper that reduces indentation when visiting a range of floors in order.
func ForEachIndex(from, to int, action func(i int)) {
	for i := from; i <= to; i++ {
		action(i)
	}
}
