package catql_test

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/catql"
	"github.com/sandrolain/catql/pkg/model"
)

func FuzzQuery(f *testing.F) {
	seeds := []string{
		`select(x | x.id == 'org.a')`,
		`select(x | x.id ~= /org.*/).latest()`,
		`collect(x | x.providedCapabilities)`,
		`traverse(x | everything.select(y | y.version > x.version))`,
		`unique(id).limit(2)`,
		`first(x | x.property('k') == null)`,
		`select(x | x.version.major / 0)`,
		`limit(-1)`,
		`everything[10]`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	cat := fixture()
	it := &model.Item{ID: "org.a", Version: model.MustParseVersion("1.0"), Properties: map[string]string{"k": "v"}}
	f.Fuzz(func(t *testing.T, input string) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		if res, err := catql.Query(ctx, input, cat); err == nil {
			_ = res.Slice()
		}
		_, _ = catql.Match(ctx, input, it)
	})
}
