package incentive_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/yeonholee/hr-payroll/internal/incentive"
)

func flatBindings(row incentive.SalesRow) map[string]float64 {
	return map[string]float64{
		incentive.VarSalesAmount:  float64(row.SalesAmount),
		incentive.VarTargetAmount: float64(row.TargetAmount),
		incentive.VarBaseRate:     0.02,
		incentive.VarBonusRate:    0.05,
	}
}

var _ = Describe("Simulator", func() {
	var (
		engine    *incentive.Engine
		simulator *incentive.Simulator
	)

	BeforeEach(func() {
		var err error
		engine, err = incentive.NewEngine()
		Expect(err).NotTo(HaveOccurred())
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		simulator = incentive.NewSimulator(engine, incentive.SimulatorConfig{
			MaxWorkers:   4,
			JobQueueSize: 64,
			EvalTimeout:  5 * time.Second,
		}, logger)
	})

	AfterEach(func() {
		simulator.Shutdown()
	})

	It("should return results in input order regardless of scheduling", func() {
		rows := make([]incentive.SalesRow, 50)
		for i := range rows {
			rows[i] = incentive.SalesRow{
				EmployeeID:  int64(i + 1),
				SalesAmount: int64((i + 1) * 1_000_000),
			}
		}

		results, err := simulator.Run(context.Background(), "sales_amount * base_rate", rows, flatBindings)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(50))
		for i, res := range results {
			Expect(res.EmployeeID).To(Equal(int64(i + 1)))
			Expect(res.Amount).To(Equal(int64((i + 1) * 20_000)))
		}
	})

	It("should return an empty slice for no rows", func() {
		results, err := simulator.Run(context.Background(), "sales_amount * base_rate", nil, flatBindings)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("should capture evaluation errors per row", func() {
		rows := []incentive.SalesRow{
			{EmployeeID: 1, SalesAmount: 120_000_000, TargetAmount: 100_000_000},
			{EmployeeID: 2, SalesAmount: 80_000_000, TargetAmount: 100_000_000},
		}

		results, err := simulator.Run(context.Background(), "sales_amount - target_amount", rows, flatBindings)

		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].Error).To(BeEmpty())
		Expect(results[0].Amount).To(Equal(int64(20_000_000)))
		Expect(results[1].Error).NotTo(BeEmpty())
		Expect(results[1].Amount).To(BeZero())
	})

	It("should stop when the caller cancels", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rows := []incentive.SalesRow{{EmployeeID: 1, SalesAmount: 1}}
		_, err := simulator.Run(ctx, "sales_amount * base_rate", rows, flatBindings)

		Expect(err).To(MatchError(context.Canceled))
	})

	It("should serve concurrent batches with different expressions", func() {
		rows := []incentive.SalesRow{
			{EmployeeID: 1, SalesAmount: 10_000_000},
			{EmployeeID: 2, SalesAmount: 20_000_000},
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		var doubled, tripled []incentive.BatchRowResult

		wg.Add(2)
		go func() {
			defer wg.Done()
			doubled, errs[0] = simulator.Run(context.Background(), "sales_amount * 2.0", rows, flatBindings)
		}()
		go func() {
			defer wg.Done()
			tripled, errs[1] = simulator.Run(context.Background(), "sales_amount * 3.0", rows, flatBindings)
		}()
		wg.Wait()

		Expect(errs[0]).NotTo(HaveOccurred())
		Expect(errs[1]).NotTo(HaveOccurred())
		Expect(doubled[0].Amount).To(Equal(int64(20_000_000)), fmt.Sprintf("doubled: %+v", doubled))
		Expect(doubled[1].Amount).To(Equal(int64(40_000_000)))
		Expect(tripled[0].Amount).To(Equal(int64(30_000_000)))
		Expect(tripled[1].Amount).To(Equal(int64(60_000_000)))
	})
})
