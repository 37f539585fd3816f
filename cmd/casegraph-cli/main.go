// Casegraph CLI — инструмент командной строки для отправки событий
// и просмотра jobs пересчёта через HTTP API.
//
// Использование:
//
//	casegraph [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	event   Отправка событий дел
//	job     Просмотр jobs пересчёта
//	case    Управление делами
//	graph   Просмотр графа зависимостей
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Casegraph/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "casegraph",
		Short:         "Casegraph CLI — case artifact recompute tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewEventCmd(clientFn, outputFn),
		cli.NewJobCmd(clientFn, outputFn),
		cli.NewCaseCmd(clientFn, outputFn),
		cli.NewGraphCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
