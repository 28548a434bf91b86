package features

import "sort"

// Vocabulary is the ordered set of category names an encoder recognizes.
// The order is fixed when the vocabulary is built and determines the layout
// of the one-hot block, so it must be reused unmodified at prediction time.
type Vocabulary struct {
	names   []string
	indexes map[string]int
}

// NewVocabulary builds a vocabulary from the given category values. Names
// are de-duplicated and sorted lexicographically, so the result does not
// depend on row order.
func NewVocabulary(categories []string) *Vocabulary {
	seen := make(map[string]bool, len(categories))
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		names = append(names, c)
	}
	sort.Strings(names)

	indexes := make(map[string]int, len(names))
	for i, n := range names {
		indexes[n] = i
	}
	return &Vocabulary{names: names, indexes: indexes}
}

// Index returns the one-hot column index of name.
func (v *Vocabulary) Index(name string) (int, bool) {
	i, ok := v.indexes[name]
	return i, ok
}

// Name returns the category at one-hot column index i.
func (v *Vocabulary) Name(i int) string {
	return v.names[i]
}

// Names returns a copy of the ordered category names.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.names)
}
