package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandrolain/catql/pkg/catalog"
	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/parser"
)

func buildCatalog(n int) *catalog.Catalog {
	items := make([]*model.Item, n)
	for i := range items {
		items[i] = &model.Item{
			ID:      fmt.Sprintf("org.item%d", i%(n/4+1)),
			Version: model.Version{Major: i % 4},
			Requires: []model.Requirement{{
				Namespace: model.NamespaceItem,
				Name:      fmt.Sprintf("org.item%d", (i+1)%(n/4+1)),
				Range:     model.AnyVersion,
			}},
		}
	}
	return catalog.New(items...)
}

func benchmarkQuery(b *testing.B, query string, indexed bool) {
	cat := buildCatalog(10000)
	expr, err := parser.ParseQuery(query)
	if err != nil {
		b.Fatal(err)
	}
	ev := evaluator.New()
	var opts []evaluator.ExecOption
	if indexed {
		opts = append(opts, evaluator.WithIndexProvider(cat))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := ev.Query(context.Background(), expr, cat, opts...)
		if err != nil {
			b.Fatal(err)
		}
		if res.Len() == 0 {
			b.Fatal("empty result")
		}
	}
}

func BenchmarkSelectByID(b *testing.B) {
	q := `select(x | x.id == 'org.item42')`
	b.Run("scan", func(b *testing.B) { benchmarkQuery(b, q, false) })
	b.Run("index", func(b *testing.B) { benchmarkQuery(b, q, true) })
}

func BenchmarkSelectByCapability(b *testing.B) {
	q := `select(x | x ~= requirement('catalog.item', 'org.item42'))`
	b.Run("scan", func(b *testing.B) { benchmarkQuery(b, q, false) })
	b.Run("index", func(b *testing.B) { benchmarkQuery(b, q, true) })
}

func BenchmarkLatest(b *testing.B) {
	benchmarkQuery(b, `select(x | x.id ~= /org.item1*/).latest()`, true)
}
