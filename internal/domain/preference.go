package domain

import (
	"time"

	"smarthub/internal/schedule"
)

// PreferenceID 全局唯一的用户偏好记录 ID（单例）
const PreferenceID = "user-preference"

// UserPreference 用户偏好（温度阈值 + 灯光计划），每个部署只有一条
type UserPreference struct {
	ID        string   `json:"_id,omitempty" bson:"_id,omitempty"`
	UserTemp  *float64 `json:"user_temp" bson:"user_temp"` // 风扇温度阈值，nil = 未配置
	LightMode string   `json:"light_mode" bson:"light_mode"`
	// UserLight is the resolved base time ("HH:MM:SS"); sunset mode stores the
	// sunset time looked up when the preference was written.
	UserLight    string             `json:"user_light" bson:"user_light"`
	LightTimeOff schedule.TimeOfDay `json:"light_time_off" bson:"light_time_off"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasThreshold reports whether a temperature threshold is configured.
func (p *UserPreference) HasThreshold() bool {
	return p != nil && p.UserTemp != nil
}

// Fields returns the $set document used to upsert the singleton.
func (p *UserPreference) Fields() map[string]any {
	return map[string]any{
		"user_temp":      p.UserTemp,
		"light_mode":     p.LightMode,
		"user_light":     p.UserLight,
		"light_time_off": p.LightTimeOff,
		"updated_at":     p.UpdatedAt,
	}
}
