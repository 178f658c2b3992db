package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/storage"
	"github.com/starford/lngkit/internal/translator"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Parse language files and report diagnostics",
		ArgsUsage: "<file> [file...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-passes",
				Usage: "Substitution sweeps per block",
				Value: parser.DefaultMaxPasses,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print each result as JSON",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not log individual diagnostics",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return cli.Exit("check: at least one file is required", 2)
			}

			level := slog.LevelInfo
			if cmd.Bool("quiet") {
				level = slog.LevelError + 1
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			failed := 0
			for _, file := range files {
				res := parser.ParseFile(file,
					parser.WithLogger(logger),
					parser.WithSource(filepath.Base(file)),
					parser.WithMaxPasses(int(cmd.Int("max-passes"))))
				if !res.OK() {
					failed++
				}
				if cmd.Bool("json") {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					if err := enc.Encode(res); err != nil {
						return err
					}
					continue
				}
				fmt.Printf("%s: %d translations, %d warnings, %d errors\n",
					file, len(res.Translations), res.Warnings, res.Errors)
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("check: %d of %d files have errors", failed, len(files)), 1)
			}
			return nil
		},
	}
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Languages directory (overrides languages.path)",
	}
}

// openTranslator returns a translator over the configured languages
// directory and the default language it should prefer.
func openTranslator(cmd *cli.Command) (*translator.Translator, string, error) {
	cfg, err := loadOptionalConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	store, err := storage.NewFS(cfg.Languages.Path, cfg.Languages.Extension)
	if err != nil {
		return nil, "", err
	}
	tr := translator.New(store, translator.WithParserOptions(cfg.Parser.Options(nil)...))
	return tr, cfg.Languages.Default, nil
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the translation of a key",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			dirFlag(),
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Language code; defaults to languages.default, then the locale",
			},
			&cli.StringFlag{
				Name:  "default",
				Usage: "Value printed when the key is missing",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			key := strings.TrimSpace(cmd.Args().First())
			if key == "" {
				return cli.Exit("get: key is required", 2)
			}
			tr, def, err := openTranslator(cmd)
			if err != nil {
				return err
			}

			preferred := []string{cmd.String("lang")}
			if preferred[0] == "" {
				preferred = []string{def, translator.DetectLanguage()}
			}
			if _, err := tr.SetPreferred(preferred...); err != nil {
				return fmt.Errorf("get: %w", err)
			}

			fmt.Println(tr.Get(key, cmd.String("default")))
			if !tr.Has(key) {
				if s := tr.Suggest(key, 5); len(s) > 0 {
					fmt.Fprintln(os.Stderr, missingKeyMessage(key, tr.Language(), s))
				}
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func missingKeyMessage(key, code string, suggestions []string) string {
	return fmt.Sprintf("lngkit: no key %q in %s, did you mean: %s", key, code, strings.Join(suggestions, ", "))
}

func langsCommand() *cli.Command {
	return &cli.Command{
		Name:  "langs",
		Usage: "List language files in the languages directory",
		Flags: []cli.Flag{
			dirFlag(),
			&cli.BoolFlag{
				Name:  "known",
				Usage: "List every language with a built-in display name instead",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			var entries []langs.Entry
			if cmd.Bool("known") {
				entries = langs.Known()
			} else {
				tr, _, err := openTranslator(cmd)
				if err != nil {
					return err
				}
				if entries, err = tr.Available(); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\n", e.Code, e.Name)
			}
			return tw.Flush()
		},
	}
}
