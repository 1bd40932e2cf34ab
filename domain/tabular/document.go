package tabular

// Field is one key/value pair of a document, in insertion order
type Field struct {
	Key   string
	Value interface{}
}

// Document is a schema-less record with ordered fields. Values are plain Go
// values (string, int64, float64, bool, time.Time or nil).
type Document []Field

// Get returns the value stored under key
func (d Document) Get(key string) (interface{}, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in order
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// Sheet is the set of documents read from one worksheet
type Sheet struct {
	Name      string
	Headers   []string
	Documents []Document
}
