package domain

// ProfileTimeLayout last_updated 的格式（dd/mm/yyyy HH:MM:SS）
const ProfileTimeLayout = "02/01/2006 15:04:05"

type Profile struct {
	ID          string  `json:"_id,omitempty" bson:"_id,omitempty"`
	Username    *string `json:"username" bson:"username"`
	Role        *string `json:"role" bson:"role"`
	Color       *string `json:"color" bson:"color"`
	LastUpdated *string `json:"last_updated" bson:"last_updated"`
}
