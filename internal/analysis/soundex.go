package analysis

import "unicode"

// soundexClass maps a lower-case letter to its Soundex digit. Vowels and
// h/w/y (and any non-letter) map to 0, meaning they contribute no digit.
func soundexClass(r rune) byte {
	switch r {
	case 'b', 'f', 'p', 'v':
		return '1'
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return '2'
	case 'd', 't':
		return '3'
	case 'l':
		return '4'
	case 'm', 'n':
		return '5'
	case 'r':
		return '6'
	}
	return 0
}

// Soundex returns the classic 4-character phonetic code for a token: the
// first character upper-cased, followed by consonant-class digits with
// consecutive duplicates collapsed, zero-padded or truncated to length 4.
// The empty string encodes to "". Non-alphabetic characters are not
// sanitised: a leading digit passes through ToUpper unchanged and
// non-letters in the tail contribute no digit, same as vowels.
func Soundex(token string) string {
	runes := []rune(token)
	if len(runes) == 0 {
		return ""
	}
	code := make([]byte, 0, 4)
	code = append(code, byte(unicode.ToUpper(runes[0])))
	// h and w are transparent: "ashcraft" collapses the s and c to a
	// single 2 across the h. Any other non-coding character separates
	// duplicates, so "tymczak" keeps the codes of both z and k.
	var prev byte
	for _, r := range runes[1:] {
		low := unicode.ToLower(r)
		digit := soundexClass(low)
		if digit == 0 {
			if low != 'h' && low != 'w' {
				prev = 0
			}
			continue
		}
		if digit == prev {
			continue
		}
		code = append(code, digit)
		prev = digit
		if len(code) == 4 {
			break
		}
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}
