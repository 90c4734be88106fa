package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Add space for negative sign
	if negative {
		digits++
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	return utoa64(uint64(n))
}

// utoa64 converts a 64-bit unsigned integer to a string
func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	return string(buf)
}

// ftoa converts a float to a fixed four-decimal string. Diagnostics never
// need more precision, and this avoids pulling strconv's full float
// formatter into the firmware image.
func ftoa(f float64) string {
	s := ""
	if f < 0 {
		s = "-"
		f = -f
	}

	whole := uint64(f)
	frac := uint64((f-float64(whole))*10000 + 0.5)
	if frac >= 10000 {
		whole++
		frac -= 10000
	}

	// Left-pad the fractional digits to four places
	fracStr := utoa64(frac)
	for len(fracStr) < 4 {
		fracStr = "0" + fracStr
	}

	return s + utoa64(whole) + "." + fracStr
}
