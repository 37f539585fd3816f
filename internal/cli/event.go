package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewEventCmd создаёт группу команд для работы с событиями.
func NewEventCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Submit case events",
	}

	cmd.AddCommand(newEventSubmitCmd(clientFn, outputFn))

	return cmd
}

func newEventSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var entityType string
	var entityID string
	var payload []string
	var payloadJSON string
	var async bool

	cmd := &cobra.Command{
		Use:   "submit CASE_ID EVENT_TYPE",
		Short: "Submit a case event and wait for the recompute job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := SubmitEventRequest{
				CaseID:     args[0],
				EventType:  args[1],
				EntityType: entityType,
				EntityID:   entityID,
			}

			if payloadJSON != "" {
				if err := json.Unmarshal([]byte(payloadJSON), &req.Payload); err != nil {
					return fmt.Errorf("invalid --payload-json: %w", err)
				}
			}
			if len(payload) > 0 {
				if req.Payload == nil {
					req.Payload = make(map[string]any)
				}
				for _, kv := range payload {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid payload format %q, expected KEY=VALUE", kv)
					}
					req.Payload[parts[0]] = parts[1]
				}
			}

			if async {
				accepted, err := client.SubmitEventAsync(req)
				if err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Event queued: %s %s", accepted.CaseID, accepted.EventType))
				return nil
			}

			job, err := client.SubmitEvent(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job finished: %s (%s)", job.ID, job.Status))
			printJobSteps(out, job)
			return nil
		},
	}

	cmd.Flags().StringVar(&entityType, "entity-type", "", "Entity type of the event")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "Entity ID of the event")
	cmd.Flags().StringSliceVar(&payload, "payload", nil, "Payload values as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&payloadJSON, "payload-json", "", "Payload as a JSON object")
	cmd.Flags().BoolVar(&async, "async", false, "Queue the event instead of waiting for the job")

	return cmd
}

// NewCaseCmd создаёт группу команд для работы с делами.
func NewCaseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage cases",
	}

	cmd.AddCommand(newCaseCancelCmd(clientFn, outputFn))

	return cmd
}

func newCaseCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel CASE_ID",
		Short: "Cancel the active recompute job of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.CancelCase(args[0])
			if err != nil {
				return err
			}

			if result.Cancelled {
				out.Success(fmt.Sprintf("Active job of case %s cancelled", result.CaseID))
			} else {
				out.Success(fmt.Sprintf("Case %s has no active job", result.CaseID))
			}
			if out.jsonMode {
				out.JSON(result)
			}
			return nil
		},
	}
}
