package types

import "strings"

// Address is the embedded postal address shared by suppliers, warehouses
// and order shipping details. It is stored as a sub-document in Mongo
// (PascalCase element names match the rest of the document layout) and as
// prefixed columns in Postgres.
type Address struct {
	Street string `json:"street" bson:"Street" gorm:"column:street" validate:"required"`
	City   string `json:"city" bson:"City" gorm:"column:city" validate:"required"`
	State  string `json:"state" bson:"State" gorm:"column:state" validate:"required"`
	Zip    string `json:"zip" bson:"Zip" gorm:"column:zip" validate:"required"`
}

// IsZero reports whether every address field is blank.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.Zip) == ""
}
