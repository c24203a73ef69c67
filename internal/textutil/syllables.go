package textutil

import (
	"strings"
)

const vowels = "aeiouyàáâãäåèéêëìíîïòóôõöùúûüý"

// Syllables estimates the syllable count of a single word by counting vowel groups,
// discounting a silent trailing "e". Every word has at least one syllable.
func Syllables(word string) int {
	w := []rune(strings.ToLower(word))
	count := 0
	prevVowel := false
	for _, r := range w {
		v := strings.ContainsRune(vowels, r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(w)
	if count > 1 && n > 2 && w[n-1] == 'e' && !strings.ContainsRune(vowels, w[n-2]) {
		// "table", "people" keep their final syllable
		if !(w[n-2] == 'l' && !strings.ContainsRune(vowels, w[n-3])) {
			count--
		}
	}

	if count < 1 {
		return 1
	}
	return count
}

// TotalSyllables sums Syllables over words
func TotalSyllables(words []string) int {
	total := 0
	for _, w := range words {
		total += Syllables(w)
	}
	return total
}
