package gorm

import "time"

// MappingProfile is a named, reusable set of key→property assignments saved
// from a session. Engine session state itself stays in memory; profiles are
// the only persisted artifact.
type MappingProfile struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	Name      string    `gorm:"column:name;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Entries []MappingProfileEntry `gorm:"foreignKey:ProfileID"`
}

// TableName specifies the table name for GORM
func (MappingProfile) TableName() string {
	return "mapping_profiles"
}

// MappingProfileEntry is one key→property assignment inside a profile. The
// transformation pipeline is stored as its JSON encoding.
type MappingProfileEntry struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID  string `gorm:"column:profile_id;type:uuid;index"`
	Key        string `gorm:"column:source_key"`
	PropertyID string `gorm:"column:property_id"`
	Label      string `gorm:"column:property_label"`
	Datatype   string `gorm:"column:property_datatype"`
	SubField   string `gorm:"column:sub_field"`
	BlocksJSON string `gorm:"column:blocks_json;type:text"`
}

// TableName specifies the table name for GORM
func (MappingProfileEntry) TableName() string {
	return "mapping_profile_entries"
}
