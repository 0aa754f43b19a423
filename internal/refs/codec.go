package refs

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidReference reports an external identifier that cannot be decoded
// into a store-native id.
type ErrInvalidReference struct {
	Value string
}

func (e *ErrInvalidReference) Error() string {
	return fmt.Sprintf("invalid reference %q", e.Value)
}

// Parse decodes an external hex identifier into its native form. Every id that
// enters the service from a path parameter or token claim passes through here
// before it is allowed into a query filter.
func Parse(external string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(external)
	if err != nil {
		return primitive.NilObjectID, &ErrInvalidReference{Value: external}
	}
	return id, nil
}

// New mints a fresh identifier. ObjectIDs are never reused, which is what
// keeps department identity stable across create/delete cycles.
func New() primitive.ObjectID {
	return primitive.NewObjectID()
}
