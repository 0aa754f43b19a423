package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is one entry of a company's embedded department list. The company
// document is the canonical home for departments; there is no departments
// collection.
type Department struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      DepartmentName     `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Company owns its department list exclusively. The list is append-only under
// create, mutated in place under rename and filtered under delete.
type Company struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Departments []Department       `bson:"departments" json:"departments"`
}
