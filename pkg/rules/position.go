package rules

import (
	"regexp"
	"sort"
	"strings"
)

// positions converts byte offsets to 1-based line and column numbers.
type positions struct {
	lineStarts []int
}

func newPositions(code string) positions {
	starts := []int{0}
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return positions{lineStarts: starts}
}

func (p positions) at(offset int) (line, col int) {
	i := sort.Search(len(p.lineStarts), func(i int) bool { return p.lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - p.lineStarts[i] + 1
}

var commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

// blankComments replaces /* */ comments with spaces, keeping newlines so
// offsets stay valid.
func blankComments(code string) string {
	return commentPattern.ReplaceAllStringFunc(code, func(c string) string {
		var b strings.Builder
		b.Grow(len(c))
		for i := 0; i < len(c); i++ {
			if c[i] == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		return b.String()
	})
}


// sortHits orders hits by position, keeping detection order on ties.
func sortHits(hits []hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].loc.Line != hits[j].loc.Line {
			return hits[i].loc.Line < hits[j].loc.Line
		}
		return hits[i].loc.Column < hits[j].loc.Column
	})
}
