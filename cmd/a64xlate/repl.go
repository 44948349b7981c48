package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/colorfulnotion/a64jit/a64/interp"
	"github.com/colorfulnotion/a64jit/jit"
)

const replHelp = `<word>...      translate and run words at the current pc
set vN=<hex>   load a 128-bit register
state          print the registers
ir <word>...   print the IR of words without running them
reset          clear registers and flags
pc <hex>       set the guest address
help           this text
quit           leave`

type replSession struct {
	tr  *jit.Translator
	out io.Writer
	s   interp.State
	pc  uint64
}

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive translate-and-run console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := opts.translator()
			if err != nil {
				return err
			}
			defer tr.Close()

			home, _ := os.UserHomeDir()
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "a64> ",
				HistoryFile: filepath.Join(home, ".a64xlate_history"),
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer rl.Close()

			sess := &replSession{tr: tr, out: rl.Stdout()}
			fmt.Fprintln(sess.out, replHelp)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if err != nil {
					return nil
				}
				if done := sess.exec(cmd, strings.TrimSpace(line)); done {
					return nil
				}
			}
		},
	}
}

// exec runs one console line and reports whether the session is over.
func (r *replSession) exec(cmd *cobra.Command, line string) bool {
	if line == "" {
		return false
	}
	verb, rest, _ := strings.Cut(line, " ")
	switch verb {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, replHelp)
	case "state":
		fmt.Fprint(r.out, r.s.String())
	case "reset":
		r.s = interp.State{}
	case "set":
		if err := setRegister(&r.s, rest); err != nil {
			fmt.Fprintln(r.out, "error:", err)
		}
	case "pc":
		var pc uint64
		if _, err := fmt.Sscanf(strings.TrimPrefix(rest, "0x"), "%x", &pc); err != nil {
			fmt.Fprintln(r.out, "error:", err)
			return false
		}
		r.pc = pc
	case "ir":
		words, err := parseWords([]string{rest})
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			return false
		}
		bb, err := r.tr.TranslateBlock(cmd.Context(), r.pc, words)
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			return false
		}
		fmt.Fprint(r.out, bb.IR.String())
	default:
		words, err := parseWords([]string{line})
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			return false
		}
		bb, err := r.tr.Run(cmd.Context(), r.pc, words, &r.s)
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			return false
		}
		fmt.Fprint(r.out, bb.String())
		if r.s.Raised {
			fmt.Fprintf(r.out, "exception %s @ %#x\n", r.s.Exception, r.s.ExceptionPC)
			r.s.Raised = false
		}
		r.pc = bb.NextPC
	}
	return false
}
