package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/replay"
)

// #region main

func main() {
	textPath := flag.String("text", "", "path to the source text to record")
	name := flag.String("name", "", "case name (default: text file name)")
	shift1 := flag.Int("shift1", 0, "first shift")
	shift2 := flag.Int("shift2", 0, "second shift")
	outPath := flag.String("out", "", "fixture JSON path; an existing fixture is appended to")
	description := flag.String("description", "", "fixture description for a new file")
	flag.Parse()

	if *textPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --text path/to/text --shift1 N --shift2 N --out path/to/fixture.json [--name case]")
		os.Exit(2)
	}
	p := cipher.ShiftPair{Shift1: *shift1, Shift2: *shift2}
	if err := run(*textPath, *name, p, *outPath, *description); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(textPath, name string, p cipher.ShiftPair, outPath, description string) error {
	text, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(text) {
		return fmt.Errorf("read text: %s is not valid UTF-8", textPath)
	}
	if name == "" {
		name = filepath.Base(textPath)
	}

	f, err := loadOrCreate(outPath, description)
	if err != nil {
		return err
	}

	fc := replay.RecordCase(name, string(text), p)
	replaced := false
	for i := range f.Cases {
		if f.Cases[i].Name == name {
			f.Cases[i] = fc
			replaced = true
		}
	}
	if !replaced {
		f.Cases = append(f.Cases, fc)
	}

	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "recorded case %q (%d ambiguities) -> %s\n", name, len(fc.ExpectedAmbiguities), outPath)
	return nil
}

func loadOrCreate(path, description string) (*replay.Fixture, error) {
	f, err := replay.LoadFixture(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &replay.Fixture{Description: description}, nil
	}
	if err != nil {
		return nil, err
	}
	if description != "" {
		f.Description = description
	}
	return f, nil
}

// #endregion export
