package entities

import "time"

// Transceiver is one append-only transceiver observation
type Transceiver struct {
	ID            int64     `db:"id" gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Callsign      string    `db:"callsign" gorm:"column:callsign" json:"callsign"`
	TransceiverID int       `db:"transceiver_id" gorm:"column:transceiver_id" json:"transceiver_id"`
	FrequencyHz   int64     `db:"frequency_hz" gorm:"column:frequency_hz" json:"frequency_hz"`
	Latitude      float64   `db:"latitude" gorm:"column:latitude" json:"latitude"`
	Longitude     float64   `db:"longitude" gorm:"column:longitude" json:"longitude"`
	HeightMSLM    float64   `db:"height_msl_m" gorm:"column:height_msl_m" json:"height_msl_m"`
	HeightAGLM    float64   `db:"height_agl_m" gorm:"column:height_agl_m" json:"height_agl_m"`
	EntityType    string    `db:"entity_type" gorm:"column:entity_type" json:"entity_type"`
	Timestamp     time.Time `db:"timestamp" gorm:"column:timestamp" json:"timestamp"`
}

func (Transceiver) TableName() string { return "transceivers" }
