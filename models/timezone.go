package models

// Timezone is a user-owned timezone record. Every query against the
// timezones table is filtered by UserID so that records never leak
// between principals.
type Timezone struct {
	// ID is the internal unique identifier of the record.
	ID int64 `json:"id"`

	// UserID is the owner of the record. Not exposed via JSON.
	UserID int64 `json:"-"`

	// City is the display name of the timezone's city.
	City string `json:"city"`

	// GMTDeltaSeconds is the offset from GMT in seconds.
	GMTDeltaSeconds int64 `json:"gmt_delta_seconds"`
}

// TableName returns the name of the database table
// associated with the Timezone model.
func (t Timezone) TableName() string {
	return "timezones"
}
