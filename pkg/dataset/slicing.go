package dataset

// normalizeSlice computes the resulting length and start/step of a Python-
// style slice(start, stop, step) applied to a sequence of length n. The
// caller maps logical index j (0 <= j < length) to the source index via
// start + j*step.
func normalizeSlice(n, start, stop, step int) (length, normStart, normStep int) {
	if step == 0 {
		step = 1
	}

	if step > 0 {
		start = clampIndex(start, n, false)
		stop = clampIndex(stop, n, false)

		if stop < start {
			stop = start
		}

		length = (stop - start + step - 1) / step

		return length, start, step
	}

	start = clampIndex(start, n, true)
	stop = clampIndex(stop, n, true)

	if stop > start {
		stop = start
	}

	length = (start - stop + (-step) - 1) / (-step)

	return length, start, step
}

// clampIndex normalizes a possibly-negative, possibly-out-of-range slice
// bound against a sequence of length n. reverse selects the bound semantics
// used for a negative-step slice, where the natural default start is n-1 and
// the natural default stop is -1 (meaning "before index 0").
func clampIndex(i, n int, reverse bool) int {
	if i < 0 {
		i += n
	}

	switch {
	case reverse:
		if i < -1 {
			i = -1
		}

		if i > n-1 {
			i = n - 1
		}
	default:
		if i < 0 {
			i = 0
		}

		if i > n {
			i = n
		}
	}

	return i
}
