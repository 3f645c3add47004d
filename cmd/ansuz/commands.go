package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tailscale/hujson"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tools"
)

var errOperationFailed = errors.New("operation failed")

// openSession loads the config and starts a single tool session.
func openSession(ctx context.Context, cmd *cli.Command) (*tools.Session, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, closer := internal.NewLogger(cfg.App, os.Stderr)
	slog.SetDefault(logger)

	h, err := internal.NewHandler(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	s, err := h.Open(ctx)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return s, func() { closer.Close() }, nil
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum results, 0 for the default"}
}

func folderFlag() cli.Flag {
	return &cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Restrict to this folder"}
}

func callCommand() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Run one tool operation and print the JSON result",
		ArgsUsage: "<" + strings.Join(tools.Groups, "|") + ">",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "params",
				Aliases: []string{"p"},
				Usage:   "JSON or JSONC file with the operation parameters, - for stdin",
				Value:   "-",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			group := cmd.Args().First()
			if group == "" {
				return fmt.Errorf("missing group, expected one of %s", strings.Join(tools.Groups, ", "))
			}
			params, err := readParams(cmd.String("params"), os.Stdin)
			if err != nil {
				return err
			}
			op, err := tools.Decode(group, params)
			if err != nil {
				return err
			}

			s, done, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer done()

			res := s.Run(ctx, op)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.Success {
				return errOperationFailed
			}
			return nil
		},
	}
}

// readParams reads operation parameters and strips JSONC comments and
// trailing commas.
func readParams(name string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read params: %w", err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	return standardized, nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search and print matching lines",
		ArgsUsage: "<query>",
		Flags:     []cli.Flag{folderFlag(), limitFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			s, done, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer done()

			res := s.Search(ctx, &tools.SearchText{Query: query, Folder: cmd.String("folder"), Limit: int(cmd.Int("limit"))})
			if !res.Success {
				return fmt.Errorf("%w: %s", errOperationFailed, res.Message)
			}
			items, _ := res.Results.([]models.SearchResult)
			rows := make([]table.Row, len(items))
			for i, r := range items {
				rows[i] = table.Row{r.Path, r.Line, r.Snippet}
			}
			renderTable(os.Stdout, table.Row{"Path", "Line", "Snippet"}, rows, res)
			return nil
		},
	}
}

func tasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List tasks",
		Flags: []cli.Flag{
			folderFlag(),
			limitFlag(),
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include completed tasks"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, done, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer done()

			res := s.Search(ctx, &tools.ListTasks{
				Folder:           cmd.String("folder"),
				IncludeCompleted: cmd.Bool("all"),
				Limit:            int(cmd.Int("limit")),
			})
			if !res.Success {
				return fmt.Errorf("%w: %s", errOperationFailed, res.Message)
			}
			items, _ := res.Results.([]models.TaskInfo)
			rows := make([]table.Row, len(items))
			for i, t := range items {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				rows[i] = table.Row{t.Path, t.Line, "[" + mark + "]", t.Text}
			}
			renderTable(os.Stdout, table.Row{"Path", "Line", "Done", "Task"}, rows, res)
			return nil
		},
	}
}

func tagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List tags with note counts",
		Flags: []cli.Flag{limitFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, done, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer done()

			res := s.Search(ctx, &tools.Tags{Limit: int(cmd.Int("limit"))})
			if !res.Success {
				return fmt.Errorf("%w: %s", errOperationFailed, res.Message)
			}
			items, _ := res.Results.([]models.TagInfo)
			rows := make([]table.Row, len(items))
			for i, t := range items {
				rows[i] = table.Row{t.Tag, t.Count}
			}
			renderTable(os.Stdout, table.Row{"Tag", "Notes"}, rows, res)
			return nil
		},
	}
}

func prefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show the vault preferences",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, done, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer done()

			if s.Preferences == nil {
				fmt.Println("no preferences configured")
				return nil
			}
			renderPreferences(os.Stdout, s.Preferences)
			return nil
		},
	}
}
