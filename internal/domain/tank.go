package domain

type Tank struct {
	ID       string   `json:"_id,omitempty" bson:"_id,omitempty"`
	Location *string  `json:"location" bson:"location"`
	Lat      *float64 `json:"lat" bson:"lat"`
	Long     *float64 `json:"long" bson:"long"`
}

// TankPatch carries only the fields a PATCH actually sent.
type TankPatch struct {
	Location *string  `json:"location"`
	Lat      *float64 `json:"lat"`
	Long     *float64 `json:"long"`
}

// Fields returns the $set document; nil fields are left untouched.
func (p TankPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.Lat != nil {
		fields["lat"] = *p.Lat
	}
	if p.Long != nil {
		fields["long"] = *p.Long
	}
	return fields
}
