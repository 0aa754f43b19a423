package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope pins a query to one company. It is a required argument on every store
// method that touches tenant data, so isolation is enforced by the signatures
// rather than by each call site remembering a filter clause.
type Scope struct {
	CompanyID primitive.ObjectID
}

// NewScope builds a scope for the given company.
func NewScope(companyID primitive.ObjectID) Scope {
	return Scope{CompanyID: companyID}
}

// filter prepends the company clause to the given clauses. Users and entries
// carry the company id in _cId.
func (s Scope) filter(clauses ...bson.E) bson.D {
	out := bson.D{{Key: "_cId", Value: s.CompanyID}}
	return append(out, clauses...)
}

// companyFilter addresses the company document itself.
func (s Scope) companyFilter(clauses ...bson.E) bson.D {
	out := bson.D{{Key: "_id", Value: s.CompanyID}}
	return append(out, clauses...)
}
