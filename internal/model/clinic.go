package model

// Clinic is reference data for scheduling: each clinic carries the opening
// hours its doctors are bookable within. Administration of clinics is
// handled elsewhere; this service only reads them.
type Clinic struct {
	Base
	Name      string `db:"name" json:"name"`
	Address   string `db:"address" json:"address"`
	Phone     string `db:"phone" json:"phone"`
	OpenHour  int    `db:"open_hour" json:"open_hour"`
	CloseHour int    `db:"close_hour" json:"close_hour"`
}

type ClinicWithDoctors struct {
	Clinic
	Doctors []*Doctor `json:"doctors"`
}
