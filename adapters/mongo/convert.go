package mongo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xlmongo/domain/tabular"
)

// ToBSON converts a document into an ordered BSON document
func ToBSON(doc tabular.Document) bson.D {
	d := make(bson.D, len(doc))
	for i, f := range doc {
		value := f.Value
		if v, ok := value.(tabular.Value); ok {
			value = v.Interface()
		}
		d[i] = bson.E{Key: f.Key, Value: value}
	}
	return d
}

// FromBSON converts a decoded BSON document into plain Go values
func FromBSON(d bson.D) tabular.Document {
	doc := make(tabular.Document, len(d))
	for i, e := range d {
		doc[i] = tabular.Field{Key: e.Key, Value: normalize(e.Value)}
	}
	return doc
}

// normalize maps BSON-specific types onto the primitives tabular.FromRaw
// understands. Nested documents and arrays become text.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil
	case string, bool, float64, int64, time.Time:
		return val
	case int32:
		return int64(val)
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return val.String()
		}
		return f
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Symbol:
		return string(val)
	case primitive.D:
		return documentText(val)
	case primitive.A:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = text(normalize(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}

func documentText(d primitive.D) string {
	out, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return fmt.Sprintf("%v", d)
	}
	return string(out)
}

func text(v interface{}) string {
	if v == nil {
		return "None"
	}
	return tabular.FromRaw(v).Text()
}

// redactURI hides credentials before a URI reaches logs or errors
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
