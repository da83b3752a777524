package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct {
	ledgerName string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask the AI assistant a question about the ledger" }
func (*assistCmd) Usage() string {
	return `bufy assist <question>

  Sends the question to Gemini together with the ledger document and
  prints the answer. The GEMINI_API_KEY environment variable must be
  set; the model is selected with BUFY_GEMINI_MODEL.

Usage Examples:
$ bufy assist "which category grew the most over the last three months?"
$ bufy assist "can I afford a 250/month car lease?"
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerName, "l", "", "Ledger to reason about. Defaults to the current ledger.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	question := strings.Join(f.Args(), " ")

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	_, l, err := loadLedger(c.ledgerName)
	if err != nil {
		return fail(err)
	}
	var doc bytes.Buffer
	if err := l.EncodeLedger(&doc); err != nil {
		return fail(err)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
You are a careful personal-budgeting assistant. You are given a budget
ledger as a JSON document: accounts, categories, transactions (budgeted
and actual amounts), recurring series and what-if simulations. Answer
the user's question from that data only. Show amounts in the ledger's
currency and say so when the data is insufficient to answer.`}}},
	}
	contents := []*genai.Content{{Parts: []*genai.Part{
		{Text: "The ledger document:\n\n" + doc.String()},
		{Text: question},
	}}}

	resp, err := client.Models.GenerateContent(ctx, cfg.GeminiModel, contents, config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating answer:", err)
		return subcommands.ExitFailure
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		fmt.Fprintln(os.Stderr, "No answer received.")
		return subcommands.ExitFailure
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		answer.WriteString(part.Text)
	}
	printMarkdown(answer.String())
	return subcommands.ExitSuccess
}
