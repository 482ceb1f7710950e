package toon

import (
	"strconv"
	"testing"

	"github.com/paularlott/toon/value"
)

func benchmarkDoc() value.Value {
	rows := make([]value.Value, 0, 100)
	for i := 0; i < 100; i++ {
		rows = append(rows, productRow(int64(i), "Product "+strconv.Itoa(i), float64(i)+0.99, i%2 == 0))
	}
	return obj(
		kv("config", obj(
			kv("debug", value.FromBool(true)),
			kv("timeout", value.FromInt(30)),
			kv("servers", value.Array(value.FromString("server1"), value.FromString("server2"), value.FromString("server3"))),
		)),
		kv("products", value.FromSlice(rows)),
	)
}

func BenchmarkEncode(b *testing.B) {
	doc := benchmarkDoc()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	data, err := Encode(benchmarkDoc())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
