package seats

import (
	"sort"
	"strconv"
	"strings"

	"seatkeep/internal/shared/apperrors"

	"github.com/google/uuid"
)

// Scheme selects how Renumber labels seats
type Scheme string

const (
	// SchemeSequential numbers every seat of the event 1..N
	SchemeSequential Scheme = "sequential"
	// SchemeRowBased restarts at 1 in every (section, row)
	SchemeRowBased Scheme = "row-based"
)

func ParseScheme(raw string) (Scheme, error) {
	switch s := Scheme(strings.ToLower(strings.TrimSpace(raw))); s {
	case SchemeSequential, SchemeRowBased:
		return s, nil
	}
	return "", apperrors.Validation(apperrors.CodeInvalidScheme, "unknown numbering scheme %q", raw).
		WithField("allowed", []string{string(SchemeSequential), string(SchemeRowBased)})
}

var sectionPrecedence = map[string]int{
	"VIP":     0,
	"PREMIUM": 1,
	"GENERAL": 2,
}

func sectionRank(section string) int {
	if rank, ok := sectionPrecedence[strings.ToUpper(strings.TrimSpace(section))]; ok {
		return rank
	}
	return len(sectionPrecedence)
}

// naturalLess orders numeric labels numerically ahead of everything else,
// then falls back to plain string order.
func naturalLess(a, b string) (less, decided bool) {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi, true
		}
		return false, false
	case aErr == nil:
		return true, true
	case bErr == nil:
		return false, true
	}
	if a != b {
		return a < b, true
	}
	return false, false
}

// SortForNumbering orders seats the way both schemes walk them
func SortForNumbering(seats []Seat) {
	sort.SliceStable(seats, func(i, j int) bool {
		a, b := &seats[i], &seats[j]
		if ra, rb := sectionRank(a.Section), sectionRank(b.Section); ra != rb {
			return ra < rb
		}
		if a.Section != b.Section {
			return strings.ToUpper(a.Section) < strings.ToUpper(b.Section) ||
				(strings.EqualFold(a.Section, b.Section) && a.Section < b.Section)
		}
		if less, ok := naturalLess(a.RowLabel, b.RowLabel); ok {
			return less
		}
		if less, ok := naturalLess(a.SeatNumber, b.SeatNumber); ok {
			return less
		}
		return a.Ordinal < b.Ordinal
	})
}

// Renumber computes new seat numbers. Only seat_number is derived; identity,
// section, row and status are left alone.
func Renumber(seats []Seat, scheme Scheme) map[uuid.UUID]string {
	ordered := make([]Seat, len(seats))
	copy(ordered, seats)
	SortForNumbering(ordered)

	labels := make(map[uuid.UUID]string, len(ordered))
	n := 0
	var section, row string
	for i, s := range ordered {
		if scheme == SchemeRowBased && (i == 0 || s.Section != section || s.RowLabel != row) {
			n = 0
		}
		section, row = s.Section, s.RowLabel
		n++
		labels[s.ID] = strconv.Itoa(n)
	}
	return labels
}
