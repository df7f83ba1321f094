// Command calc is a terminal keypad for the calculator engine. Each input
// line is a key sequence such as "12.5×2=" or "AC 7 +/-"; the display is
// printed after every line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/observability"
)

func main() {
	expr := flag.String("e", "", "Evaluate a single key sequence and exit")
	verbose := flag.Bool("v", false, "Log every key to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: calc [-e keys] [-v]\n\nKeys: 0-9 . AC C +/- ± %% + - × * ÷ / =\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		if err := observability.InitDevelopmentLogger(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer observability.SyncLogger()
	}

	if *expr != "" {
		e := engine.New()
		if err := pressLine(e, *expr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Println(e.Display())
		return
	}

	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run reads key sequences from r until EOF and writes the display after each
// line. Rejected keys are reported inline and do not end the session.
func run(r io.Reader, w io.Writer) error {
	e := engine.New()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if err := pressLine(e, scanner.Text()); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		fmt.Fprintln(w, e.Display())
	}

	return scanner.Err()
}

func pressLine(e *engine.Engine, line string) error {
	keys, err := engine.ParseKeys(line)
	if err != nil {
		return err
	}

	for _, k := range keys {
		if err := e.Press(k); err != nil {
			return err
		}
		observability.Logger.Debug("key", zap.String("key", k), zap.String("display", e.Display()))
	}
	return nil
}
