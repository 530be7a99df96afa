package entities

import "time"

// Controller status values maintained by the batch writer and summary job
const (
	ControllerOnline  = "online"
	ControllerOffline = "offline"
)

// Controller is the latest-wins live row for one controller session
type Controller struct {
	Callsign    string    `db:"callsign" gorm:"column:callsign;primaryKey" json:"callsign"`
	CID         int       `db:"cid" gorm:"column:cid;primaryKey" json:"cid"`
	LogonTime   time.Time `db:"logon_time" gorm:"column:logon_time;primaryKey" json:"logon_time"`
	Name        string    `db:"name" gorm:"column:name" json:"name"`
	Frequency   string    `db:"frequency" gorm:"column:frequency" json:"frequency"`
	Facility    int       `db:"facility" gorm:"column:facility" json:"facility"`
	Rating      int       `db:"rating" gorm:"column:rating" json:"rating"`
	Server      string    `db:"server" gorm:"column:server" json:"server"`
	VisualRange int       `db:"visual_range" gorm:"column:visual_range" json:"visual_range"`
	TextATIS    string    `db:"text_atis" gorm:"column:text_atis" json:"text_atis"`
	Status      string    `db:"status" gorm:"column:status" json:"status"`
	LastSeen    time.Time `db:"last_seen" gorm:"column:last_seen" json:"last_seen"`
	LastUpdated time.Time `db:"last_updated" gorm:"column:last_updated" json:"last_updated"`
}

func (Controller) TableName() string { return "controllers" }

// ControllerArchive mirrors Controller verbatim for retention
type ControllerArchive struct {
	Controller
	ArchivedAt time.Time `db:"archived_at" gorm:"column:archived_at" json:"archived_at"`
}

func (ControllerArchive) TableName() string { return "controllers_archive" }
