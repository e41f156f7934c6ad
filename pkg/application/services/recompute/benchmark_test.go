package recompute_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/application/services/costing"
	"github.com/obrador/fabricacion/pkg/application/services/pricing"
	"github.com/obrador/fabricacion/pkg/application/services/recompute"
	"github.com/obrador/fabricacion/pkg/domain/entities"
	testhelpers "github.com/obrador/fabricacion/pkg/infrastructure/testing"
)

func newBenchmarkCoordinator(ingredients []entities.IngredientRecord) *recompute.Coordinator {
	engine := costing.NewEngine(costing.Config{DefaultCurrency: "EUR"})
	coordinator := recompute.NewInMemoryCoordinator(engine, nil)
	coordinator.ReplaceCatalog(pricing.NewResolver().BuildCatalog(ingredients))
	return coordinator
}

func BenchmarkResolveCheapestPrices(b *testing.B) {
	for _, size := range []int{100, 1000} {
		b.Run(fmt.Sprintf("ingredients=%d", size), func(b *testing.B) {
			ingredients, _ := testhelpers.BuildWideTestData(size, 0, 0)
			at := time.Now()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				pricing.ResolveCheapestPricesAt(ingredients, at)
			}
		})
	}
}

func BenchmarkRecomputeAll(b *testing.B) {
	for _, jobs := range []int{100, 1000} {
		b.Run(fmt.Sprintf("jobs=%d", jobs), func(b *testing.B) {
			ingredients, params := testhelpers.BuildWideTestData(200, jobs, 8)
			coordinator := newBenchmarkCoordinator(ingredients)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				report := coordinator.RecomputeAll(params)
				if report.Complete != jobs {
					b.Fatalf("Expected %d complete jobs, got %+v", jobs, report)
				}
			}
		})
	}
}

func BenchmarkRecomputeSingleJob(b *testing.B) {
	ingredients, params := testhelpers.BuildWideTestData(200, 1000, 8)
	coordinator := newBenchmarkCoordinator(ingredients)
	coordinator.RecomputeAll(params)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		labor := decimal.NewFromInt(int64(20 + i%10))
		jobID := params[i%len(params)].ID
		if _, found, err := coordinator.Recompute(jobID, recompute.JobPatch{LaborCost: &labor}); !found || err != nil {
			b.Fatalf("Recompute failed: found=%v err=%v", found, err)
		}
	}
}
