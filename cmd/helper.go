package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moby/term"
	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/action"
	"github.com/projecteru2/waifuadmin/client"
	"github.com/projecteru2/waifuadmin/output"
)

// initClient returns a waifud client for the configured host.
func initClient() (*client.Client, error) {
	c, err := client.New(conf.Host, conf.HTTPTimeout())
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	return c, nil
}

// policy is the confirmation policy from local config.
func policy() action.Policy {
	return action.Policy{Extra: conf.ConfirmActions}
}

func addOutputFlags(cmd *cobra.Command, def output.Format) {
	cmd.Flags().StringP("output", "o", string(def), "output format: table, yaml, json")
	cmd.Flags().Bool("no-headers", false, "omit table headers")
}

func formatterFromFlags(cmd *cobra.Command) (output.Formatter, error) {
	format, _ := cmd.Flags().GetString("output")
	noHeaders, _ := cmd.Flags().GetBool("no-headers")
	wide, _ := cmd.Flags().GetBool("wide")
	return output.NewFormatter(output.Options{
		Format:    output.Format(format),
		NoHeaders: noHeaders,
		Wide:      wide,
	})
}

// printFormatted writes the result of a Formatter call to stdout.
func printFormatted(s string, err error) error {
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, s)
	return err
}

// readConfirmation returns the --confirm flag when given, otherwise asks on
// the terminal. Without a terminal the flag is required.
func readConfirmation(cmd *cobra.Command, prompt string) (string, error) {
	if cmd.Flags().Changed("confirm") {
		text, _ := cmd.Flags().GetString("confirm")
		return text, nil
	}
	if _, isTerm := term.GetFdInfo(os.Stdin); !isTerm {
		return "", errors.New("stdin is not a terminal, pass --confirm")
	}
	return promptLine(os.Stdin, os.Stderr, prompt)
}

func promptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt+" ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
