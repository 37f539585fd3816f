package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewJobCmd создаёт группу команд для работы с jobs.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect recompute jobs",
	}

	cmd.AddCommand(
		newJobListCmd(clientFn, outputFn),
		newJobShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newJobListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var caseID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs(ListJobsOpts{
				CaseID: caseID,
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "CASE_ID", "EVENT", "STATUS", "CREATED"}
			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = []string{j.ID, j.CaseID, j.EventType, j.Status, j.CreatedAt}
			}

			out.Print(headers, rows, jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&caseID, "case-id", "", "Filter by case ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, COMPLETED, PARTIAL_FAILURE, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newJobShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show job details with steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.GetJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job %s: %s (%d steps, %d failed)",
				job.ID, job.Status, job.Counts.Total, job.Counts.Failed))
			printJobSteps(out, job)
			return nil
		},
	}
}

// printJobSteps выводит шаги job таблицей или весь job в JSON.
func printJobSteps(out *Output, job *JobResponse) {
	headers := []string{"STEP", "STATUS", "KIND", "ERROR", "ITEMS"}
	rows := make([][]string, len(job.Steps))
	for i, s := range job.Steps {
		items := ""
		if v, ok := s.Metrics["items_produced"]; ok {
			items = strconv.FormatFloat(v, 'f', -1, 64)
		}
		rows[i] = []string{s.Name, s.Status, s.ErrorKind, s.Error, items}
	}

	out.Print(headers, rows, job)
}
