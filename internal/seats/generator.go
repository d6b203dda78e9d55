package seats

import (
	"fmt"
	"strconv"

	"seatkeep/internal/floorplans"
	"seatkeep/internal/shared/apperrors"

	"github.com/google/uuid"
)

// SeatID derives the stable id of a seat position, so regenerating an
// unchanged layout reproduces the same ids.
func SeatID(eventID uuid.UUID, section, row, seatNumber string) uuid.UUID {
	return uuid.NewSHA1(eventID, []byte(section+"|"+row+"|"+seatNumber))
}

// Generate expands layout objects into seats in object order.
//
// A GRID yields rows row_origin.. and seat numbers column_origin.., row-major,
// stopping at the object's seat count; a GRID without geometry is one row.
// Every other seat-bearing kind is one synthetic row named after its label,
// or T<n> for the n-th such object in its section, with seats 1..N.
func Generate(eventID uuid.UUID, objects []floorplans.FloorPlanObject) ([]Seat, error) {
	var seats []Seat
	tables := make(map[string]int)
	taken := make(map[uuid.UUID]int)

	add := func(idx int, obj floorplans.FloorPlanObject, section, row, number string) error {
		id := SeatID(eventID, section, row, number)
		if prev, dup := taken[id]; dup {
			return apperrors.Validation(apperrors.CodeDuplicateSeatPosition,
				"objects %d and %d both place seat %s-%s-%s", prev, idx, section, row, number).
				WithField("object_index", idx)
		}
		taken[id] = idx
		seats = append(seats, Seat{
			ID:         id,
			EventID:    eventID,
			ObjectID:   obj.ID,
			Section:    section,
			RowLabel:   row,
			SeatNumber: number,
			Tier:       string(obj.Tier),
			Price:      obj.Price,
			Status:     StatusAvailable,
			Ordinal:    len(seats) + 1,
		})
		return nil
	}

	for idx, obj := range objects {
		count := obj.SeatCount()
		if count <= 0 {
			continue
		}
		section := obj.EffectiveSection()

		if obj.Kind != floorplans.KindGrid {
			tables[section]++
			row := obj.Label
			if row == "" {
				row = fmt.Sprintf("T%d", tables[section])
			}
			for n := 1; n <= count; n++ {
				if err := add(idx, obj, section, row, strconv.Itoa(n)); err != nil {
					return nil, err
				}
			}
			continue
		}

		rowOrigin, colOrigin := obj.Origins()
		rows, cols := 1, count
		if obj.HasGridGeometry() {
			rows, cols = obj.Rows, obj.Columns
			if count > rows*cols {
				return nil, apperrors.Validation(apperrors.CodeInvalidLayout,
					"object %d declares %d seats but its grid holds %d", idx, count, rows*cols).
					WithField("object_index", idx)
			}
		}

		emitted := 0
		for r := 0; r < rows && emitted < count; r++ {
			for c := 0; c < cols && emitted < count; c++ {
				if err := add(idx, obj, section, strconv.Itoa(rowOrigin+r), strconv.Itoa(colOrigin+c)); err != nil {
					return nil, err
				}
				emitted++
			}
		}
	}

	return seats, nil
}
