package seats

import (
	"strconv"
	"testing"

	"seatkeep/internal/shared/apperrors"

	"github.com/google/uuid"
)

func seat(section, row, number string, ordinal int) Seat {
	return Seat{ID: uuid.New(), Section: section, RowLabel: row, SeatNumber: number, Ordinal: ordinal, Status: StatusAvailable}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Scheme
		wantErr bool
	}{
		{"sequential", SchemeSequential, false},
		{" Row-Based ", SchemeRowBased, false},
		{"alphabetical", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseScheme(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseScheme(%q) = %q, %v; want %q, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
		if err != nil && !apperrors.IsValidation(err) {
			t.Errorf("ParseScheme(%q) error kind = %s, want VALIDATION", tt.in, apperrors.KindOf(err))
		}
	}
}

func TestSortForNumbering(t *testing.T) {
	seats := []Seat{
		seat("Balcony", "1", "1", 1),
		seat("GENERAL", "2", "1", 2),
		seat("GENERAL", "10", "1", 3),
		seat("GENERAL", "B", "1", 4),
		seat("VIP", "1", "x", 5),
		seat("VIP", "1", "10", 6),
		seat("VIP", "1", "9", 7),
		seat("Premium", "1", "1", 8),
		seat("Annex", "1", "1", 9),
	}
	SortForNumbering(seats)

	want := []string{
		"VIP-1-9", "VIP-1-10", "VIP-1-x",
		"Premium-1-1",
		"GENERAL-2-1", "GENERAL-10-1", "GENERAL-B-1",
		"Annex-1-1", "Balcony-1-1",
	}
	for i, w := range want {
		if seats[i].Label() != w {
			t.Errorf("position %d = %s, want %s", i, seats[i].Label(), w)
		}
	}
}

func TestRenumberSequential(t *testing.T) {
	seats := []Seat{
		seat("GENERAL", "1", "4", 1),
		seat("VIP", "2", "7", 2),
		seat("VIP", "1", "3", 3),
		seat("GENERAL", "1", "2", 4),
	}

	labels := Renumber(seats, SchemeSequential)

	want := map[uuid.UUID]string{
		seats[2].ID: "1",
		seats[1].ID: "2",
		seats[3].ID: "3",
		seats[0].ID: "4",
	}
	for id, w := range want {
		if labels[id] != w {
			t.Errorf("label of %s = %q, want %q", id, labels[id], w)
		}
	}
	if seats[0].SeatNumber != "4" {
		t.Error("Renumber mutated its input")
	}
}

func TestRenumberRowBased(t *testing.T) {
	var seats []Seat
	for row := 1; row <= 3; row++ {
		for n := 5; n >= 1; n-- {
			seats = append(seats, seat("VIP", strconv.Itoa(row), strconv.Itoa(n*2), len(seats)+1))
		}
	}

	labels := Renumber(seats, SchemeRowBased)

	perRow := make(map[string]map[string]bool)
	for _, s := range seats {
		if perRow[s.RowLabel] == nil {
			perRow[s.RowLabel] = make(map[string]bool)
		}
		perRow[s.RowLabel][labels[s.ID]] = true
	}
	for row, got := range perRow {
		for k := 1; k <= 5; k++ {
			if !got[strconv.Itoa(k)] {
				t.Errorf("row %s missing number %d: %v", row, k, got)
			}
		}
	}
	// the old seat 2 is the first in its row
	if labels[seats[4].ID] != "1" {
		t.Errorf("seat VIP-1-2 relabelled %q, want 1", labels[seats[4].ID])
	}
}
