package domain

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// DepartmentName is the name-or-false field of a department document. A newly
// created department is stored with a literal boolean false in place of a name
// and stays that way until the first rename, so the type has to round-trip
// both wire forms.
type DepartmentName struct {
	Value string
	Named bool
}

// NamedDepartment wraps a concrete name.
func NamedDepartment(name string) DepartmentName {
	return DepartmentName{Value: name, Named: true}
}

// MarshalJSON emits false for an unnamed department, otherwise the string.
func (n DepartmentName) MarshalJSON() ([]byte, error) {
	if !n.Named {
		return []byte("false"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts either wire form.
func (n *DepartmentName) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "false", "null":
		*n = DepartmentName{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("department name: %w", err)
	}
	*n = DepartmentName{Value: s, Named: true}
	return nil
}

// MarshalBSONValue stores false until a rename sets the name.
func (n DepartmentName) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !n.Named {
		return bson.MarshalValue(false)
	}
	return bson.MarshalValue(n.Value)
}

// UnmarshalBSONValue accepts boolean and string forms.
func (n *DepartmentName) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeBoolean:
		*n = DepartmentName{}
		return nil
	case bson.TypeString:
		*n = DepartmentName{Value: raw.StringValue(), Named: true}
		return nil
	case bson.TypeNull:
		*n = DepartmentName{}
		return nil
	default:
		return fmt.Errorf("department name: unexpected bson type %s", t)
	}
}

func (n DepartmentName) String() string {
	if !n.Named {
		return ""
	}
	return n.Value
}
