package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/source"
)

const (
	flagLanguage = "language"
	flagFile     = "file"
	flagRev      = "rev"
	flagJSON     = "json"
	flagSave     = "save"
	flagTools    = "tools"
)

// InputFlags are accepted globally and by every command that reads code
func InputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagLanguage,
			Aliases: []string{"l"},
			Usage:   "Language of the code (detected from the file name when omitted)",
		},
		&cli.StringSliceFlag{
			Name:    flagFile,
			Aliases: []string{"f"},
			Usage:   "File to process, \"-\" for stdin (repeatable)",
		},
		&cli.StringFlag{
			Name:  flagRev,
			Usage: "Read files as committed at this git revision (e.g. HEAD~1, main)",
		},
		&cli.BoolFlag{
			Name:  flagJSON,
			Usage: "Print the result as JSON",
		},
		&cli.BoolFlag{
			Name:  flagSave,
			Usage: "Save the result to the local history",
		},
	}
}

// inputFiles collects --file values and positional arguments
func inputFiles(c *cli.Context) []string {
	files := append([]string{}, c.StringSlice(flagFile)...)
	return append(files, c.Args().Slice()...)
}

// readInputs loads every requested snippet and turns it into a request. When
// no file is given, code is read from stdin if it is not a terminal.
func readInputs(c *cli.Context, loader *source.Loader, stdin io.Reader) ([]review.Request, error) {
	files := inputFiles(c)
	language := c.String(flagLanguage)
	rev := c.String(flagRev)

	if len(files) == 0 {
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return nil, fmt.Errorf("no input: pass --file or pipe code on stdin")
		}
		files = []string{"-"}
	}

	reqs := make([]review.Request, 0, len(files))
	for _, file := range files {
		var snippet *source.Snippet
		var err error
		if file == "-" {
			if rev != "" {
				return nil, fmt.Errorf("--rev cannot be used with stdin")
			}
			snippet, err = loader.Read(stdin, "")
		} else {
			snippet, err = loader.Load(file, rev)
		}
		if err != nil {
			return nil, err
		}

		req := review.Request{Language: snippet.Language, Code: snippet.Code}
		if language != "" {
			req.Language = language
		}
		if err := req.Validate(); err != nil {
			if review.NormalizeLanguage(req.Language) == review.UnknownLanguage {
				return nil, fmt.Errorf("%s: %w, pass --language", displayPath(file), err)
			}
			return nil, fmt.Errorf("%s: %w", displayPath(file), err)
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

func displayPath(file string) string {
	if file == "-" {
		return "stdin"
	}
	return file
}
