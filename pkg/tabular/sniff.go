package tabular

import "strings"

// Candidates are the delimiters considered by Sniff, in tie-break order.
var Candidates = []rune{',', ';'}

// Sniffed is the outcome of delimiter detection.
type Sniffed struct {
	// Delimiter is the chosen field separator.
	Delimiter rune
	// Counts holds the number of occurrences of each candidate in the header,
	// ignoring quoted sections.
	Counts map[rune]int
	// Ambiguous is set when two candidates appear equally often (and at least once).
	Ambiguous bool
	// Consistent is false when the sampled data lines contradict the header.
	Consistent bool
}

// Sniff picks the field delimiter from the header line and checks it
// against a sample of data lines. It has no side effects.
//
// The candidate with the highest header count wins and ties prefer comma.
// When the header holds the chosen delimiter, a sample line that holds
// another candidate instead contradicts it. Lines holding no candidate are
// short rows; they only contradict the header when they make up most of the
// sample and there is more than one of them. When the header holds no
// candidate at all the file is treated as single-column and no sample line
// may hold one.
func Sniff(header string, sample []string) Sniffed {
	s := Sniffed{
		Delimiter:  Candidates[0],
		Counts:     make(map[rune]int, len(Candidates)),
		Consistent: true,
	}

	best := -1
	for _, c := range Candidates {
		n := countOutsideQuotes(header, c)
		s.Counts[c] = n
		switch {
		case n > best:
			best = n
			s.Delimiter = c
			s.Ambiguous = false
		case n == best && n > 0:
			s.Ambiguous = true
		}
	}

	if best > 0 {
		s.Consistent = delimitedSample(sample, s.Delimiter)
		return s
	}
	for _, line := range sample {
		for _, c := range Candidates {
			if countOutsideQuotes(line, c) > 0 {
				s.Consistent = false
				return s
			}
		}
	}

	return s
}

// countOutsideQuotes counts r in line, skipping double-quoted sections.
func countOutsideQuotes(line string, r rune) int {
	n := 0
	quoted := false
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
		case c == r && !quoted:
			n++
		}
	}
	return n
}

// delimitedSample checks the non-blank sample lines against delim.
func delimitedSample(sample []string, delim rune) bool {
	lines, short := 0, 0
	for _, line := range sample {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		if countOutsideQuotes(line, delim) > 0 {
			continue
		}
		for _, c := range Candidates {
			if c != delim && countOutsideQuotes(line, c) > 0 {
				return false
			}
		}
		short++
	}
	return short < 2 || short*2 <= lines
}
