package packing

import "math"

// RangesOverlap reports whether the inclusive ranges [aFrom, aTo] and
// [bFrom, bTo] share at least one box.
func RangesOverlap(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom <= bTo && bFrom <= aTo
}

// IsValidRange reports whether both bounds are set and ordered.
func IsValidRange(from, to int) bool {
	return from > 0 && to > 0 && to >= from
}

// IsRangeOverlapping reports whether the main range of candidate overlaps the
// valid main range of any other row.
func IsRangeOverlapping(candidate Row, rows []Row) bool {
	if !IsValidRange(candidate.BoxFrom, candidate.BoxTo) {
		return false
	}
	for _, r := range rows {
		if r.RowID == candidate.RowID || !IsValidRange(r.BoxFrom, r.BoxTo) {
			continue
		}
		if RangesOverlap(candidate.BoxFrom, candidate.BoxTo, r.BoxFrom, r.BoxTo) {
			return true
		}
	}
	return false
}

// IsBoxNumberInUse reports whether box falls inside the candidate's own valid
// main range or inside the valid main range of another row. Remainder boxes
// of other rows do not count, so several rows may share a remainder box.
func IsBoxNumberInUse(box int, candidate Row, rows []Row) bool {
	if box <= 0 {
		return false
	}
	if IsValidRange(candidate.BoxFrom, candidate.BoxTo) && box >= candidate.BoxFrom && box <= candidate.BoxTo {
		return true
	}
	for _, r := range rows {
		if r.RowID == candidate.RowID || !IsValidRange(r.BoxFrom, r.BoxTo) {
			continue
		}
		if box >= r.BoxFrom && box <= r.BoxTo {
			return true
		}
	}
	return false
}

// UsedBoxNumbers returns every box covered by a valid main range.
func UsedBoxNumbers(rows []Row) map[int]struct{} {
	used := make(map[int]struct{})
	for _, r := range rows {
		if !IsValidRange(r.BoxFrom, r.BoxTo) {
			continue
		}
		for b := r.BoxFrom; b <= r.BoxTo; b++ {
			used[b] = struct{}{}
		}
	}
	return used
}

func hasNegative(e Entry) bool {
	return e.BoxFrom < 0 || e.BoxTo < 0 || e.UnitsPerBox < 0 || e.RemainBox < 0 || e.RemainUnits < 0
}

func exceedsLimits(e Entry) bool {
	return e.BoxFrom > MaxBoxNumber || e.BoxTo > MaxBoxNumber || e.RemainBox > MaxBoxNumber ||
		e.UnitsPerBox > MaxQuantity || e.RemainUnits > MaxQuantity
}

// IsRowValid is the full-row predicate used for totals and submit.
//
// A row with exactly one main bound set is accepted as is; its remainder is
// not checked. Such rows contribute nothing to the total.
func IsRowValid(candidate Row, rows []Row) bool {
	if hasNegative(candidate.Entry) || exceedsLimits(candidate.Entry) {
		return false
	}
	from, to := candidate.BoxFrom, candidate.BoxTo
	if from > 0 || to > 0 {
		if (from > 0) != (to > 0) {
			return true
		}
		if !IsValidRange(from, to) || IsRangeOverlapping(candidate, rows) {
			return false
		}
	}
	if candidate.RemainUnits > 0 && candidate.RemainBox <= 0 {
		return false
	}
	if candidate.RemainBox > 0 && IsBoxNumberInUse(candidate.RemainBox, candidate, rows) {
		return false
	}
	return true
}

// IsFieldValid applies the check of the field class f to candidate. It is the
// per-edit counterpart of IsRowValid.
func IsFieldValid(f Field, candidate Row, rows []Row) bool {
	switch f {
	case FieldBoxFrom, FieldBoxTo:
		v := candidate.get(f)
		if v <= 0 {
			return true
		}
		if v > MaxBoxNumber {
			return false
		}
		if candidate.BoxFrom > 0 && candidate.BoxTo > 0 && candidate.BoxTo < candidate.BoxFrom {
			return false
		}
		return !IsRangeOverlapping(candidate, rows)
	case FieldUnitsPerBox:
		return candidate.UnitsPerBox <= MaxQuantity
	case FieldRemainBox:
		if candidate.RemainBox <= 0 {
			return true
		}
		if candidate.RemainBox > MaxBoxNumber {
			return false
		}
		return !IsBoxNumberInUse(candidate.RemainBox, candidate, rows)
	case FieldRemainUnits:
		if candidate.RemainUnits <= 0 {
			return true
		}
		if candidate.RemainUnits > MaxQuantity || candidate.RemainBox <= 0 {
			return false
		}
		return !IsBoxNumberInUse(candidate.RemainBox, candidate, rows)
	}
	return true
}

// ComputeRowTotal returns the number of units the row packs, or 0 when the
// row is invalid or incomplete.
func ComputeRowTotal(candidate Row, rows []Row) int {
	if !IsRowValid(candidate, rows) || !IsValidRange(candidate.BoxFrom, candidate.BoxTo) || candidate.UnitsPerBox <= 0 {
		return 0
	}
	total, ok := packedUnits(candidate.BoxTo-candidate.BoxFrom+1, candidate.UnitsPerBox, candidate.RemainUnits)
	if !ok {
		return 0
	}
	return total
}

// packedUnits computes boxes*perBox + remain, reporting false on overflow.
func packedUnits(boxes, perBox, remain int) (int, bool) {
	if boxes < 0 || perBox < 0 || remain < 0 {
		return 0, false
	}
	if perBox > 0 && boxes > (math.MaxInt-remain)/perBox {
		return 0, false
	}
	return boxes*perBox + remain, true
}

// ValidateAll returns the submit-time messages of every offending row, keyed
// by row id. Rows with a single main bound set are not reported.
func ValidateAll(rows []Row) map[string]RowErrors {
	out := make(map[string]RowErrors)
	for _, r := range rows {
		var e RowErrors
		from, to := r.BoxFrom, r.BoxTo
		switch {
		case from < 0 || to < 0:
			e.BoxRange = MsgNegativeRange
		case from > MaxBoxNumber || to > MaxBoxNumber:
			e.BoxRange = MsgBoxTooLarge
		case from > 0 && to > 0 && !IsValidRange(from, to):
			e.BoxRange = MsgInvalidRange
		case IsRangeOverlapping(r, rows):
			e.BoxRange = MsgOverlappingRange
		}
		switch {
		case r.UnitsPerBox < 0:
			e.UnitsPerBox = MsgNegativeUnits
		case r.UnitsPerBox > MaxQuantity:
			e.UnitsPerBox = MsgQuantityTooLarge
		case r.UnitsPerBox == 0 && IsValidRange(from, to):
			e.UnitsPerBox = MsgUnitsRequired
		}
		switch {
		case r.RemainUnits < 0:
			e.RemainUnits = MsgNegativeRemain
		case r.RemainUnits > MaxQuantity:
			e.RemainUnits = MsgQuantityTooLarge
		case r.RemainUnits > 0 && r.RemainBox <= 0:
			e.RemainUnits = MsgRemainBoxMissing
		}
		switch {
		case r.RemainBox < 0:
			e.RemainBox = MsgNegativeRemain
		case r.RemainBox > MaxBoxNumber:
			e.RemainBox = MsgBoxTooLarge
		case r.RemainBox > 0 && IsBoxNumberInUse(r.RemainBox, r, rows):
			e.RemainBox = MsgRemainBoxInUse
		}
		if !e.Empty() {
			out[r.RowID] = e
		}
	}
	return out
}
