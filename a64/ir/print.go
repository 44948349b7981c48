package ir

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

func (inst Inst) String() string {
	var sb strings.Builder
	sb.WriteString(inst.Op.String())
	if inst.Esize != 0 {
		fmt.Fprintf(&sb, ".%d", inst.Esize)
	}
	for i, arg := range inst.Args {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	return sb.String()
}

// String renders the block as a numbered listing.
func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "block @ %#x\n", b.Location)
	for i, inst := range b.Insts {
		if inst.Type == Void {
			fmt.Fprintf(&sb, "       %s\n", inst)
		} else {
			fmt.Fprintf(&sb, "%%%-4d = %s\n", i, inst)
		}
	}
	return sb.String()
}

// Tree renders every side-effecting instruction as the root of its operand
// expression tree.
func (b *Block) Tree() treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("block @ %#x", b.Location))
	for _, inst := range b.Insts {
		if inst.Type != Void {
			continue
		}
		b.addOperands(tree.AddBranch(inst.String()), inst)
	}
	return tree
}

func (b *Block) addOperands(branch treeprint.Tree, inst Inst) {
	for _, arg := range inst.Args {
		if arg.IsImmediate() {
			branch.AddNode(arg.String())
			continue
		}
		producer := b.Insts[arg.Inst()]
		label := fmt.Sprintf("%s = %s", arg, producer)
		if len(producer.Args) == 0 {
			branch.AddNode(label)
			continue
		}
		b.addOperands(branch.AddBranch(label), producer)
	}
}

type jsonInst struct {
	Index int      `json:"index"`
	Op    string   `json:"op"`
	Esize uint8    `json:"esize,omitempty"`
	Type  string   `json:"type"`
	Args  []string `json:"args"`
}

type jsonBlock struct {
	Location string     `json:"location"`
	Insts    []jsonInst `json:"insts"`
}

// MarshalJSON renders the block in a stable, human-diffable form.
func (b *Block) MarshalJSON() ([]byte, error) {
	out := jsonBlock{Location: fmt.Sprintf("%#x", b.Location), Insts: make([]jsonInst, len(b.Insts))}
	for i, inst := range b.Insts {
		args := make([]string, len(inst.Args))
		for j, arg := range inst.Args {
			args[j] = arg.String()
		}
		out.Insts[i] = jsonInst{Index: i, Op: inst.Op.String(), Esize: inst.Esize, Type: inst.Type.String(), Args: args}
	}
	return json.Marshal(out)
}
