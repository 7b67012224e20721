package main

import (
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/settlement"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type estimateView struct {
	AsOf             time.Time `json:"asOf" yaml:"asOf"`
	DeliveryDateTime time.Time `json:"deliveryDateTime" yaml:"deliveryDateTime"`
	DaysRemaining    int       `json:"daysRemaining" yaml:"daysRemaining"`
	Tier             string    `json:"tier" yaml:"tier"`
	CancellationRate string    `json:"cancellationRate" yaml:"cancellationRate"`
	CollectedAmount  int64     `json:"collectedAmount" yaml:"collectedAmount"`
	BaseFee          int64     `json:"baseFee" yaml:"baseFee"`
	MaterialFee      int64     `json:"materialFee" yaml:"materialFee"`
	TotalFee         int64     `json:"totalFee" yaml:"totalFee"`
	RefundAmount     int64     `json:"refundAmount" yaml:"refundAmount"`
}

func estimateCmd(opts *options) *cobra.Command {
	var (
		collected, material int64
		delivery, asOf      string
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Compute the fee and refund of cancelling a project",
		Example: `  settlectl estimate --collected 45000 --material 4500 --delivery 2026-05-15T10:00:00Z
  settlectl estimate --collected 45000 --delivery 2026-05-15T10:00:00Z --as-of 2026-05-10T10:00:00Z -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deliveryAt, err := time.Parse(time.RFC3339, delivery)
			if err != nil {
				return fmt.Errorf("--delivery: %w", err)
			}
			at := time.Now().UTC()
			if asOf != "" {
				if at, err = time.Parse(time.RFC3339, asOf); err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
			}

			e, err := settlement.Estimate(settlement.Inputs{
				CollectedAmount:  collected,
				MaterialCost:     material,
				DeliveryDateTime: deliveryAt,
			}, at)
			if err != nil {
				return err
			}

			view := estimateView{
				AsOf:             e.AsOf(),
				DeliveryDateTime: deliveryAt,
				DaysRemaining:    e.DaysRemaining(),
				Tier:             e.Tier().String(),
				CancellationRate: e.CancellationRate().String(),
				CollectedAmount:  e.CollectedAmount(),
				BaseFee:          e.BaseFee(),
				MaterialFee:      e.MaterialFee(),
				TotalFee:         e.TotalFee(),
				RefundAmount:     e.RefundAmount(),
			}
			if opts.output != formatTable {
				return render(opts.out, opts.output, view)
			}

			tw := newTable(opts.out)
			tw.SetColumnConfigs(alignRight(2))
			tw.AppendRows([]table.Row{
				{"Days remaining", view.DaysRemaining},
				{"Tier", e.Tier().Describe()},
				{"Collected", formatAmount(view.CollectedAmount)},
				{"Base fee", formatAmount(view.BaseFee)},
				{"Material fee", formatAmount(view.MaterialFee)},
			})
			tw.AppendSeparator()
			tw.AppendRows([]table.Row{
				{"Total fee", formatAmount(view.TotalFee)},
				{"Refund", formatAmount(view.RefundAmount)},
			})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().Int64Var(&collected, "collected", 0, "collected amount")
	cmd.Flags().Int64Var(&material, "material", 0, "declared material cost")
	cmd.Flags().StringVar(&delivery, "delivery", "", "delivery date-time (RFC 3339)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "cancellation instant (RFC 3339), defaults to now")
	_ = cmd.MarkFlagRequired("collected")
	_ = cmd.MarkFlagRequired("delivery")
	return cmd
}

type tierView struct {
	Tier    string `json:"tier" yaml:"tier"`
	Rate    string `json:"rate" yaml:"rate"`
	MinDays *int   `json:"minDays,omitempty" yaml:"minDays,omitempty"`
	MaxDays *int   `json:"maxDays,omitempty" yaml:"maxDays,omitempty"`
}

func tiersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List the cancellation fee tiers",
		RunE: func(*cobra.Command, []string) error {
			tiers := settlement.Tiers()

			views := make([]tierView, 0, len(tiers))
			for _, t := range tiers {
				views = append(views, describeTier(t))
			}
			if opts.output != formatTable {
				return render(opts.out, opts.output, views)
			}

			tw := newTable(opts.out)
			tw.AppendHeader(table.Row{"Tier", "Rate", "Applies"})
			for i, t := range tiers {
				tw.AppendRow(table.Row{views[i].Tier, views[i].Rate, t.Describe()})
			}
			tw.Render()
			return nil
		},
	}
}

func describeTier(t settlement.Tier) tierView {
	bound := func(v int) *int { return &v }
	view := tierView{Tier: t.String(), Rate: t.Rate().String()}
	switch t {
	case settlement.TierLastMinute:
		view.MaxDays = bound(settlement.LastMinuteMaxDays)
	case settlement.TierPreparation:
		view.MinDays = bound(settlement.LastMinuteMaxDays + 1)
		view.MaxDays = bound(settlement.PreparationMaxDays)
	case settlement.TierEarly:
		view.MinDays = bound(settlement.PreparationMaxDays + 1)
	case settlement.TierUnknown:
	}
	return view
}
