package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/toon-format/toon-go/toon"
)

type config struct {
	decode         bool
	delimiter      toon.Delimiter
	indent         int
	indentExplicit bool
	output         string
	lenient        bool
	fold           bool
	expand         bool
}

func parseFlags(args []string) (config, []string, error) {
	fl := flag.NewFlagSet("toon-go", flag.ContinueOnError)

	cfg := config{delimiter: toon.Comma, indent: 2}
	var delim string

	fl.BoolVarP(&cfg.decode, "decode", "d", false, "read TOON and write JSON (default: JSON to TOON)")
	fl.StringVar(&delim, "delimiter", "comma", "array delimiter: comma, tab, or pipe")
	fl.IntVar(&cfg.indent, "indent", 2, "spaces per nesting level (0 auto-detects on decode)")
	fl.StringVarP(&cfg.output, "output", "o", "", "output file (default: stdout)")
	fl.BoolVar(&cfg.lenient, "lenient", false, "tolerate array length mismatches on decode")
	fl.BoolVar(&cfg.fold, "fold-keys", false, "fold single-entry object chains into dotted keys on encode")
	fl.BoolVar(&cfg.expand, "expand-paths", false, "expand dotted keys into nested objects on decode")

	if err := fl.Parse(args); err != nil {
		return cfg, nil, err
	}
	cfg.indentExplicit = fl.Changed("indent")

	switch delim {
	case "comma":
		cfg.delimiter = toon.Comma
	case "tab":
		cfg.delimiter = toon.Tab
	case "pipe":
		cfg.delimiter = toon.Pipe
	default:
		return cfg, nil, fmt.Errorf("unknown delimiter %q", delim)
	}

	return cfg, fl.Args(), nil
}

// encodeToTOON reads one JSON document and writes its TOON form.
func encodeToTOON(cfg config, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return errors.Wrap(err, "parsing JSON")
	}

	opts := toon.EncodeOptions{Delimiter: cfg.delimiter, Indent: cfg.indent}
	if cfg.fold {
		opts.KeyFolding = toon.FoldSafe
	}
	text, err := toon.NewEncoder(opts).Marshal(doc)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, text+"\n")
	return err
}

// decodeToJSON reads one TOON document and writes its JSON form.
func decodeToJSON(cfg config, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	// On decode the indent unit is auto-detected unless --indent was given.
	opts := toon.DecodeOptions{Strict: !cfg.lenient}
	if cfg.indentExplicit {
		opts.Indent = cfg.indent
	}
	if cfg.expand {
		opts.ExpandPaths = toon.ExpandSafe
	}
	v, err := toon.NewDecoder(opts).Decode(string(data))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(toon.ToInterface(v))
}
