package dom

import "unicode/utf8"

// Script sees character data as UTF-16 code units while the tree stores
// UTF-8. These helpers translate offsets at that boundary.

// UTF16Length returns the length of s in UTF-16 code units.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

// UTF16OffsetToByteOffset converts a UTF-16 code unit offset into a byte
// offset in s. Offsets past the end clamp to len(s); an offset that splits a
// surrogate pair resolves to the start of that character. Negative offsets
// return -1.
func UTF16OffsetToByteOffset(s string, utf16Offset int) int {
	if utf16Offset < 0 {
		return -1
	}
	units := 0
	for i, r := range s {
		w := utf16Width(r)
		if units+w > utf16Offset {
			return i
		}
		units += w
	}
	return len(s)
}

// ByteOffsetToUTF16Offset converts a byte offset in s into UTF-16 code
// units. A byte offset inside a multi-byte character counts up to the start
// of that character.
func ByteOffsetToUTF16Offset(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(s) {
		byteOffset = len(s)
	}
	units := 0
	for i := 0; i < byteOffset; {
		r, size := utf8.DecodeRuneInString(s[i:])
		if i+size > byteOffset {
			break
		}
		units += utf16Width(r)
		i += size
	}
	return units
}

func utf16Width(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
