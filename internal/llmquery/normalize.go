package llmquery

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeDocument flattens a raw document into a field-to-value map the
// transport layer can serialize. Store wrapper types are mapped to native
// values: Decimal128 to a scalar decimal, ObjectID to its hex form, and
// datetimes to UTC instants. Arrays are walked elementwise one
// sub-document level deep; anything nested deeper passes through as-is.
func NormalizeDocument(doc bson.D) map[string]any {
	out := make(map[string]any, len(doc))
	for _, element := range doc {
		switch value := element.Value.(type) {
		case primitive.A:
			list := make([]any, 0, len(value))
			for _, item := range value {
				if sub, ok := item.(bson.D); ok {
					list = append(list, normalizeShallow(sub))
					continue
				}
				list = append(list, normalizeScalar(item))
			}
			out[element.Key] = list
		default:
			out[element.Key] = normalizeScalar(element.Value)
		}
	}
	return out
}

// NormalizeDocuments maps a result set through NormalizeDocument.
func NormalizeDocuments(docs []bson.D) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NormalizeDocument(doc))
	}
	return out
}

func normalizeShallow(doc bson.D) map[string]any {
	out := make(map[string]any, len(doc))
	for _, element := range doc {
		out[element.Key] = normalizeScalar(element.Value)
	}
	return out
}

func normalizeScalar(value any) any {
	switch v := value.(type) {
	case primitive.Decimal128:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
		return v.String()
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	default:
		return value
	}
}
