package floorplans

import "strings"

// ObjectRequest describes one object of a layout being saved
type ObjectRequest struct {
	Kind         string  `json:"kind" binding:"required"`
	Label        string  `json:"label"`
	Section      string  `json:"section"`
	Tier         string  `json:"tier" binding:"required"`
	GenderTag    string  `json:"gender_tag"`
	Rows         int     `json:"rows" binding:"min=0"`
	Columns      int     `json:"columns" binding:"min=0"`
	TotalSeats   int     `json:"total_seats" binding:"min=0"`
	RowOrigin    int     `json:"row_origin" binding:"min=0"`
	ColumnOrigin int     `json:"column_origin" binding:"min=0"`
	Price        float64 `json:"price" binding:"min=0"`
}

// SaveLayoutRequest replaces the layout of an event
type SaveLayoutRequest struct {
	Name    string          `json:"name" binding:"max=200"`
	Objects []ObjectRequest `json:"objects" binding:"required,min=1,dive"`
}

// ToObject normalizes the request into an unsaved layout object
func (o ObjectRequest) ToObject() FloorPlanObject {
	return FloorPlanObject{
		Kind:         ObjectKind(strings.ToUpper(strings.TrimSpace(o.Kind))),
		Label:        strings.TrimSpace(o.Label),
		Section:      strings.TrimSpace(o.Section),
		Tier:         Tier(strings.ToUpper(strings.TrimSpace(o.Tier))),
		GenderTag:    strings.ToUpper(strings.TrimSpace(o.GenderTag)),
		Rows:         o.Rows,
		Columns:      o.Columns,
		TotalSeats:   o.TotalSeats,
		RowOrigin:    o.RowOrigin,
		ColumnOrigin: o.ColumnOrigin,
		Price:        o.Price,
	}
}

func ObjectsFromRequest(reqs []ObjectRequest) []FloorPlanObject {
	objects := make([]FloorPlanObject, 0, len(reqs))
	for _, o := range reqs {
		objects = append(objects, o.ToObject())
	}
	return objects
}
