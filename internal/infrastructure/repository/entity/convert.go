package entity

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectIDFromHex returns the zero ObjectID for empty or invalid ids,
// which omitempty then leaves for the driver to generate.
func objectIDFromHex(id string) primitive.ObjectID {
	if id == "" {
		return primitive.NilObjectID
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objID
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil || id.IsZero() {
		return ""
	}
	return id.Hex()
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func idHex(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}
