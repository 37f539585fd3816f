package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Casegraph/internal/config"
)

// NewGraphCmd создаёт группу команд для работы с графом зависимостей.
func NewGraphCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect the artifact dependency graph",
	}

	cmd.AddCommand(newGraphShowCmd(clientFn, outputFn))
	cmd.AddCommand(newGraphValidateCmd(outputFn))

	return cmd
}

func newGraphShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the graph loaded by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			g, err := client.GetGraph()
			if err != nil {
				return err
			}

			headers := []string{"NODE", "DEPENDS_ON", "DEPENDENTS"}
			rows := make([][]string, len(g.Nodes))
			for i, node := range g.Nodes {
				rows[i] = []string{
					node.Type,
					strings.Join(node.DependsOn, ","),
					strings.Join(node.Dependents, ","),
				}
			}

			out.Print(headers, rows, g)
			return nil
		},
	}
}

// newGraphValidateCmd проверяет конфигурацию локально, без сервера.
func newGraphValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG_PATH",
		Short: "Validate a graph config file without a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			g, err := cfg.BuildGraph()
			if err != nil {
				return err
			}
			if _, err := cfg.BuildTriggers(g); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Config is valid: %d nodes, %d triggers", g.Size(), len(cfg.Triggers)))
			return nil
		},
	}
}
