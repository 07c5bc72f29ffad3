// Command toon-go converts documents between JSON and TOON.
//
// By default it reads JSON and writes TOON; with --decode it reads TOON and
// writes JSON. Input comes from the file named by the first argument, or
// from stdin when no argument (or "-") is given.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

func main() {
	if err := run(afero.NewOsFs(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "toon-go:", err)
		os.Exit(1)
	}
}

func run(fs afero.Fs, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, paths, err := parseFlags(args)
	if err != nil {
		return err
	}

	in, err := openInput(fs, paths, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(fs, cfg.output, stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	if cfg.decode {
		return decodeToJSON(cfg, in, out)
	}
	return encodeToTOON(cfg, in, out)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openInput(fs afero.Fs, paths []string, stdin io.Reader) (io.ReadCloser, error) {
	if len(paths) == 0 || paths[0] == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := fs.Open(paths[0])
	if err != nil {
		return nil, err
	}
	return f, nil
}

func openOutput(fs afero.Fs, path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
