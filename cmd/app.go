// Package cmd implements the CLI application to manage a budget ledger.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/brunoclpinto/BUFY"
	"github.com/brunoclpinto/BUFY/date"
)

// group pairs a help-output section with its subcommands.
type group struct {
	name string
	cmds []subcommands.Command
}

// groups lists every subcommand the binary registers, in help order.
func groups() []group {
	return []group{
		{"ledger", []subcommands.Command{
			&initCmd{}, &listCmd{}, &queryCmd{},
			&backupCmd{}, &backupsCmd{}, &restoreCmd{},
		}},
		{"accounts", []subcommands.Command{
			&addAccountCmd{}, &accountsCmd{}, &removeAccountCmd{},
		}},
		{"categories", []subcommands.Command{
			&addCategoryCmd{}, &categoriesCmd{},
		}},
		{"transactions", []subcommands.Command{
			&addTxCmd{}, &txCmd{}, &completeCmd{},
		}},
		{"recurrence", []subcommands.Command{
			&recurCmd{}, &materializeCmd{}, &seriesCmd{},
			&pauseCmd{}, &resumeCmd{},
		}},
		{"reports", []subcommands.Command{
			&summaryCmd{}, &forecastCmd{},
		}},
		{"simulations", []subcommands.Command{
			&simNewCmd{}, &simChangeCmd{}, &simListCmd{}, &simTxsCmd{},
			&simImpactCmd{}, &simApplyCmd{}, &simDiscardCmd{},
		}},
		{"help", []subcommands.Command{
			&topicCmd{}, &assistCmd{},
		}},
	}
}

// Commands returns every subcommand in registration order, for shell
// completion.
func Commands() []subcommands.Command {
	var out []subcommands.Command
	for _, g := range groups() {
		out = append(out, g.cmds...)
	}
	return out
}

// Register registers every subcommand on the commander.
func Register(c *subcommands.Commander) {
	for _, g := range groups() {
		for _, cmd := range g.cmds {
			c.Register(cmd, g.name)
		}
	}
}

// Config is the environment-driven application configuration, loaded once
// per invocation. A .env file in the working directory is honored.
type Config struct {
	Home        string `envconfig:"BUFY_HOME"`
	Ledger      string `envconfig:"BUFY_LEDGER"`
	Retention   int    `envconfig:"BUFY_RETENTION" default:"5"`
	GeminiModel string `envconfig:"BUFY_GEMINI_MODEL" default:"gemini-2.0-flash"`
}

var (
	configOnce sync.Once
	config     Config
	configErr  error
)

func loadConfig() (Config, error) {
	configOnce.Do(func() {
		// Missing .env is the normal case.
		_ = godotenv.Load()
		configErr = envconfig.Process("", &config)
		if configErr != nil {
			return
		}
		if config.Home == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				configErr = err
				return
			}
			config.Home = filepath.Join(home, ".bufy")
		}
	})
	return config, configErr
}

// openStore opens the application store at the configured home directory.
func openStore() (*bufy.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := bufy.NewStore(cfg.Home)
	if err != nil {
		return nil, err
	}
	s.SetRetention(cfg.Retention)
	return s, nil
}

// resolveLedger picks the ledger to operate on: the -l flag, then the
// BUFY_LEDGER variable, then the last ledger used, then the only ledger
// in the store.
func resolveLedger(s *bufy.Store, flagName string) (string, error) {
	if flagName != "" {
		return flagName, nil
	}
	cfg, _ := loadConfig()
	if cfg.Ledger != "" {
		return cfg.Ledger, nil
	}
	if last, ok := s.LastLedger(); ok {
		return last, nil
	}
	names, err := s.List()
	if err != nil {
		return "", err
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "", fmt.Errorf("no ledger selected: use -l or set BUFY_LEDGER (found %d ledgers)", len(names))
}

// loadLedger opens the store and loads the selected ledger in one step.
func loadLedger(flagName string) (*bufy.Store, *bufy.Ledger, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	name, err := resolveLedger(s, flagName)
	if err != nil {
		return nil, nil, err
	}
	l, err := s.Load(name)
	if err != nil {
		return nil, nil, err
	}
	return s, l, nil
}

// fail prints the error and maps it to an exit status by kind.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if bufy.IsValidation(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// printMarkdown renders a markdown document for the terminal, falling
// back to the raw text when the renderer cannot be built.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(110),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseDate parses a CLI date argument, where the empty string means today.
func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

// reportWindow resolves the -from/-to/-offset flags into a window,
// defaulting to the ledger's current budget period.
func reportWindow(l *bufy.Ledger, from, to string, offset int) (date.Window, error) {
	if from == "" && to == "" {
		return l.BudgetWindowOffset(date.Today(), offset), nil
	}
	if offset != 0 {
		return date.Window{}, fmt.Errorf("-offset cannot be combined with -from/-to")
	}
	start, err := parseDate(from)
	if err != nil {
		return date.Window{}, err
	}
	if to == "" {
		return date.WindowOf(l.BudgetPeriod(), start, start), nil
	}
	end, err := date.Parse(to)
	if err != nil {
		return date.Window{}, err
	}
	return date.NewWindow(start, end)
}
