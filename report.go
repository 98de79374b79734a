package main

import (
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/SundayYogurt/bursary_service/config"
	"github.com/SundayYogurt/bursary_service/infra/database"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/notify"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

func reportCmd(cfg config.Config) *cobra.Command {
	var cycleID uint
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the finance summary and application counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx := cmd.Context()
			repos := repository.New(db)
			summary, err := services.NewFinanceService(repos, nil, notify.LogNotifier{}).Summary(ctx)
			if err != nil {
				return err
			}
			stats, err := services.NewReportService(repos).Analytics(ctx, cycleID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printFinance(out, summary)
			printAnalytics(out, stats)
			return nil
		},
	}
	cmd.Flags().UintVar(&cycleID, "cycle", 0, "limit application counts to one cycle id")
	return cmd
}

var heading = color.New(color.FgCyan, color.Bold)

func printFinance(w io.Writer, s *dto.FinanceSummary) {
	heading.Fprintln(w, "Finance")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Measure", "Amount"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.AppendBulk([][]string{
		{"Income", s.TotalIncome},
		{"Expenses", s.TotalExpenses},
		{"Balance", s.Balance},
		{"Disbursed", s.TotalDisbursed},
		{"Donations", s.TotalDonations},
		{"Verified donations", strconv.Itoa(s.VerifiedDonations)},
		{"Pending donations", strconv.Itoa(s.PendingDonations)},
	})
	table.Render()
}

func printAnalytics(w io.Writer, a *dto.Analytics) {
	heading.Fprintln(w, "Applications")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Status", "Count"})
	for _, k := range sortedKeys(a.ByStatus) {
		table.Append([]string{k, strconv.FormatInt(a.ByStatus[k], 10)})
	}
	table.SetFooter([]string{"Total", strconv.FormatInt(a.TotalApplications, 10)})
	table.Render()

	if a.AverageScore != nil {
		color.New(color.FgGreen).Fprintf(w, "Mean committee score: %.2f\n", *a.AverageScore)
	}
	color.New(color.FgYellow).Fprintf(w, "Requested %s, approved %s, disbursed %s\n",
		a.TotalRequested, a.TotalApproved, a.TotalDisbursed)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
