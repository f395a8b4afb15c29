package catalog

import (
	"fmt"

	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID converts a 24-hex identifier into an ObjectID. Malformed ids are
// rejected before any store access.
func parseID(field, value string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s: must be a 24 character hex string", field))
	}
	return oid, nil
}
