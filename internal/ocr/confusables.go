package ocr

// confusionGroups lists characters that OCR passes routinely mistake for one
// another on etched matrix numbers and printed catalog labels. Groups are
// symmetric: every member lists the others as alternatives.
var confusionGroups = [][]rune{
	{'0', 'O', 'Q', 'D'},
	{'1', 'I', 'l', '7'},
	{'2', 'Z'},
	{'5', 'S'},
	{'6', 'G', 'b'},
	{'8', 'B'},
	{'9', 'g', 'q'},
	{'C', 'G'},
	{'U', 'V'},
	{'K', 'X'},
	{'M', 'N'},
	{'E', 'F'},
	{'-', '_', '.'},
}

var confusables = buildConfusables()

func buildConfusables() map[rune][]rune {
	table := make(map[rune][]rune, 32)
	for _, group := range confusionGroups {
		for _, ch := range group {
			for _, alt := range group {
				if alt == ch || contains(table[ch], alt) {
					continue
				}
				table[ch] = append(table[ch], alt)
			}
		}
	}
	return table
}

func contains(runes []rune, target rune) bool {
	for _, r := range runes {
		if r == target {
			return true
		}
	}
	return false
}

// Confusables returns the ordered alternatives an OCR pass plausibly confused
// with ch. Unknown characters return nil. The lookup is total: it never fails.
func Confusables(ch rune) []rune {
	alts := confusables[ch]
	if len(alts) == 0 {
		return nil
	}
	cp := make([]rune, len(alts))
	copy(cp, alts)
	return cp
}
