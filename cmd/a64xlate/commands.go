package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/a64jit/a64/decoder"
	"github.com/colorfulnotion/a64jit/a64/interp"
)

func newTranslateCmd(opts *options) *cobra.Command {
	var (
		pc     uint64
		format string
		expect string
	)
	cmd := &cobra.Command{
		Use:   "translate <word>...",
		Short: "Translate instruction words to IR",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := parseWords(args)
			if err != nil {
				return err
			}
			tr, err := opts.translator()
			if err != nil {
				return err
			}
			defer tr.Close()

			bb, err := tr.TranslateBlock(cmd.Context(), pc, words)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, bb.String())

			switch format {
			case "text":
				fmt.Fprint(out, bb.IR.String())
			case "tree":
				fmt.Fprint(out, bb.IR.Tree().String())
			case "json":
				data, err := json.MarshalIndent(bb.IR, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			if expect == "" {
				return nil
			}
			golden, err := os.ReadFile(expect)
			if err != nil {
				return err
			}
			actual, err := json.Marshal(bb.IR)
			if err != nil {
				return err
			}
			diff, err := diffJSON(golden, actual)
			if err != nil {
				return err
			}
			if diff != "" {
				fmt.Fprintln(out, diff)
				return fmt.Errorf("IR differs from %s", expect)
			}
			fmt.Fprintf(out, "IR matches %s\n", expect)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&pc, "pc", 0, "Guest address of the first word")
	cmd.Flags().StringVar(&format, "format", "text", "IR output format (text, tree, json)")
	cmd.Flags().StringVar(&expect, "expect", "", "Golden IR JSON file to compare against")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <word>...",
		Short: "Disassemble instruction words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := parseWords(args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), decoder.DisassembleCode(wordsToCode(words)))
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		pc   uint64
		regs []string
	)
	cmd := &cobra.Command{
		Use:   "run <word>...",
		Short: "Translate instruction words and execute them on the reference evaluator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := parseWords(args)
			if err != nil {
				return err
			}
			var s interp.State
			for _, r := range regs {
				if err := setRegister(&s, r); err != nil {
					return err
				}
			}
			tr, err := opts.translator()
			if err != nil {
				return err
			}
			defer tr.Close()

			bb, err := tr.Run(cmd.Context(), pc, words, &s)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), bb.String())
			fmt.Fprint(cmd.OutOrStdout(), s.String())
			return nil
		},
	}
	cmd.Flags().Uint64Var(&pc, "pc", 0, "Guest address of the first word")
	cmd.Flags().StringArrayVar(&regs, "set", nil, "Initial register value, e.g. v1=0x00000004000000030000000200000001 (repeatable)")
	return cmd
}
