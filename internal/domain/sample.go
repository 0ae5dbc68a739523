package domain

import "time"

// SensorUpdate is the body of POST /update. Every field may be missing.
type SensorUpdate struct {
	Temperature *float64 `json:"temperature"`
	Presence    *bool    `json:"presence"`
	Datetime    *string  `json:"datetime"`
}

// IsEmpty reports whether the device sent nothing usable.
func (u SensorUpdate) IsEmpty() bool {
	return u.Temperature == nil && u.Presence == nil && u.Datetime == nil
}

// SensorSample 传感器采样 + 推导出的执行器状态（写入后不可变）
type SensorSample struct {
	ID          string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Temperature *float64  `json:"temperature,omitempty" bson:"temperature,omitempty"`
	Presence    *bool     `json:"presence,omitempty" bson:"presence,omitempty"`
	Datetime    string    `json:"datetime,omitempty" bson:"datetime,omitempty"`
	CurrentTime time.Time `json:"current_time" bson:"current_time"`
	Fan         bool      `json:"fan" bson:"fan"`
	Light       bool      `json:"light" bson:"light"`
}

// EnvironmentSnapshot is the GET /output projection of the latest sample.
type EnvironmentSnapshot struct {
	Temperature float64 `json:"temperature"`
	Presence    bool    `json:"presence"`
	Datetime    string  `json:"datetime"`
}

// Snapshot projects s; missing readings become zero values.
func (s *SensorSample) Snapshot() EnvironmentSnapshot {
	snap := EnvironmentSnapshot{Datetime: s.Datetime}
	if s.Temperature != nil {
		snap.Temperature = *s.Temperature
	}
	if s.Presence != nil {
		snap.Presence = *s.Presence
	}
	if snap.Datetime == "" {
		snap.Datetime = s.CurrentTime.Format(time.RFC3339)
	}
	return snap
}
