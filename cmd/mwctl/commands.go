package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

var errUsage = errors.New("invalid usage")

// command is a parsed subcommand ready to run against a client
type command struct {
	name    string
	execute func(ctx context.Context, client *merchantwarrior.Client) (any, error)
}

// result is the JSON document written to stdout
type result struct {
	Command  string `json:"command"`
	Approved bool   `json:"approved"`
	Response any    `json:"response"`
}

type approver interface {
	IsApproved() bool
}

func parseCommand(args []string) (*command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing command", errUsage)
	}

	name, rest := args[0], args[1:]
	switch name {
	case "query":
		return parseQuery(rest)
	case "card-info", "remove-card":
		return parseCardReference(name, rest)
	case "refund":
		return parseRefund(rest)
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func parseQuery(args []string) (*command, error) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	extended := fs.Bool("extended", false, "request extended transaction details")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, err
	}
	if len(positional) != 1 {
		return nil, fmt.Errorf("%w: query takes exactly one transaction id", errUsage)
	}
	transactionID := positional[0]

	return &command{
		name: "query",
		execute: func(ctx context.Context, client *merchantwarrior.Client) (any, error) {
			return client.QueryCard(ctx, transactionID, *extended)
		},
	}, nil
}

func parseCardReference(name string, args []string) (*command, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: %s takes a card id and a card key", errUsage, name)
	}
	cardID, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: card id %q is not a number", errUsage, args[0])
	}
	cardKey := args[1]

	if name == "card-info" {
		return &command{
			name: name,
			execute: func(ctx context.Context, client *merchantwarrior.Client) (any, error) {
				return client.GetCardInfo(ctx, cardID, cardKey)
			},
		}, nil
	}
	return &command{
		name: name,
		execute: func(ctx context.Context, client *merchantwarrior.Client) (any, error) {
			return client.RemoveCard(ctx, cardID, cardKey)
		},
	}, nil
}

func parseRefund(args []string) (*command, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("%w: refund takes amount, currency, transaction id and refund amount", errUsage)
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %v", errUsage, args[0], err)
	}
	refundAmount, err := decimal.NewFromString(args[3])
	if err != nil {
		return nil, fmt.Errorf("%w: refund amount %q: %v", errUsage, args[3], err)
	}
	currency, transactionID := args[1], args[2]

	return &command{
		name: "refund",
		execute: func(ctx context.Context, client *merchantwarrior.Client) (any, error) {
			return client.RefundCard(ctx, amount, currency, transactionID, refundAmount)
		},
	}, nil
}

// parseInterspersed allows flags before, between and after positional arguments
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func writeResult(w io.Writer, name string, response any) error {
	out := result{Command: name, Response: response}
	if a, ok := response.(approver); ok {
		out.Approved = a.IsApproved()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
