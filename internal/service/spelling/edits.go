package spelling

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultAlphabet is the substitution and insertion alphabet
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

// forEachEdit calls fn for every string one deletion, adjacent transposition,
// substitution or insertion away from word. fn may see duplicates.
func forEachEdit(word []rune, alphabet []rune, fn func(string)) {
	buf := make([]rune, 0, len(word)+1)

	for i := 0; i <= len(word); i++ {
		left, right := word[:i], word[i:]

		if len(right) > 0 {
			// deletion
			buf = append(append(buf[:0], left...), right[1:]...)
			fn(string(buf))
		}
		if len(right) > 1 {
			// transposition
			buf = append(buf[:0], left...)
			buf = append(buf, right[1], right[0])
			buf = append(buf, right[2:]...)
			fn(string(buf))
		}
		if len(right) > 0 {
			for _, c := range alphabet {
				// substitution
				buf = append(buf[:0], left...)
				buf = append(buf, c)
				buf = append(buf, right[1:]...)
				fn(string(buf))
			}
		}
		for _, c := range alphabet {
			// insertion
			buf = append(buf[:0], left...)
			buf = append(buf, c)
			buf = append(buf, right...)
			fn(string(buf))
		}
	}
}

// GenerateEdits returns the deduplicated set of strings exactly one edit away
// from word over the given alphabet. An empty alphabet means DefaultAlphabet.
func GenerateEdits(word string, alphabet string) mapset.Set[string] {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}

	edits := mapset.NewThreadUnsafeSet[string]()
	forEachEdit([]rune(word), []rune(alphabet), func(edit string) {
		edits.Add(edit)
	})
	return edits
}
