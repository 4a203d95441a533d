// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

// Similarity returns the Ratcliff-Obershelp ratio between two strings:
// twice the number of matching characters over the combined length,
// where matches are counted recursively around the longest common
// substring. 1 means identical, 0 means nothing in common.
func Similarity(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)

	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}

	return 2 * float64(matchingChars(ar, br)) / float64(total)
}

func matchingChars(a, b []rune) int {
	i, j, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	return size +
		matchingChars(a[:i], b[:j]) +
		matchingChars(a[i+size:], b[j+size:])
}

// longestCommonBlock finds the leftmost longest common substring of a
// and b, returning its start in each and its length.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}

	return ai, bi, size
}
