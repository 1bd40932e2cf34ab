package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xlmongo/domain/tabular"
)

func TestFromBSONNormalizesTypes(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	oid := primitive.NewObjectID()
	dec, err := primitive.ParseDecimal128("1234.50")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"string", "MXN", "MXN"},
		{"int32", int32(7), int64(7)},
		{"int64", int64(8), int64(8)},
		{"double", 1.5, 1.5},
		{"bool", true, true},
		{"null", primitive.Null{}, nil},
		{"undefined", primitive.Undefined{}, nil},
		{"nil", nil, nil},
		{"datetime", primitive.NewDateTimeFromTime(when), when},
		{"decimal", dec, 1234.5},
		{"object id", oid, oid.Hex()},
		{"array", bson.A{"a", int32(1), nil}, "[a, 1, None]"},
		{"sub document", bson.D{{Key: "x", Value: int32(1)}}, `{"x":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := FromBSON(bson.D{{Key: "v", Value: tt.in}})
			require.Len(t, doc, 1)
			assert.Equal(t, "v", doc[0].Key)
			if want, ok := tt.want.(time.Time); ok {
				got, ok := doc[0].Value.(time.Time)
				require.True(t, ok)
				assert.True(t, want.Equal(got))
				return
			}
			assert.Equal(t, tt.want, doc[0].Value)
		})
	}
}

func TestFromBSONKeepsFieldOrder(t *testing.T) {
	doc := FromBSON(bson.D{
		{Key: "z", Value: "1"},
		{Key: "a", Value: "2"},
		{Key: "m", Value: "3"},
	})
	assert.Equal(t, []string{"z", "a", "m"}, doc.Keys())
}

func TestToBSON(t *testing.T) {
	when := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	doc := tabular.Document{
		{Key: "Folio", Value: "A-1"},
		{Key: "Importe", Value: int64(10)},
		{Key: "Fecha", Value: when},
		{Key: "Vacio", Value: ""},
		{Key: "Valor", Value: tabular.NewNumericValue(2.5)},
	}

	d := ToBSON(doc)
	require.Len(t, d, 5)
	assert.Equal(t, bson.E{Key: "Folio", Value: "A-1"}, d[0])
	assert.Equal(t, int64(10), d[1].Value)
	assert.Equal(t, when, d[2].Value)
	assert.Equal(t, "", d[3].Value)
	assert.Equal(t, 2.5, d[4].Value)

	raw, err := bson.Marshal(d)
	require.NoError(t, err)

	var back bson.D
	require.NoError(t, bson.Unmarshal(raw, &back))
	roundTrip := FromBSON(back)
	assert.Equal(t, doc.Keys(), roundTrip.Keys())
	fecha, _ := roundTrip.Get("Fecha")
	assert.True(t, when.Equal(fecha.(time.Time)))
}

func TestRedactURI(t *testing.T) {
	assert.Equal(t, "mongodb://localhost:27017/", redactURI("mongodb://localhost:27017/"))
	assert.NotContains(t, redactURI("mongodb://admin:secret@db:27017/"), "secret")
}
