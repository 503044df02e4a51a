package validation

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ParseObjectID turns the raw value of the parameter param into an ObjectID. Driver errors
// are not leaked; the caller only sees an *InvalidIdentifierError.
func ParseObjectID(param string, raw string) (primitive.ObjectID, error) {
	if !objectIDPattern.MatchString(raw) {
		return primitive.NilObjectID, &InvalidIdentifierError{Param: param, Value: raw}
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, &InvalidIdentifierError{Param: param, Value: raw}
	}
	return id, nil
}
