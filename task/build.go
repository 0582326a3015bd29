package task

import "github.com/posixcore/sh/ast"

// Build lowers a parsed program into the task tree Run drives. This is the
// Go analogue of mrsh's mrsh_run_program plus handle_node/handle_command:
// unlike shell.c's handle_command, every ast.Command variant here is
// actually implemented, not stubbed with assert(false).
func Build(prog *ast.Program) Task {
	return buildSequence(prog.Stmts)
}

func buildSequence(stmts []*ast.CommandList) Task {
	return &sequenceTask{items: stmts}
}

func buildAndOr(n ast.AndOrList) Task {
	switch x := n.(type) {
	case *ast.Pipeline:
		return buildPipeline(x)
	case *ast.Binop:
		return &binopTask{op: x.Op, left: buildAndOr(x.Left), right: x.Right}
	default:
		panic("task: unknown AndOrList variant")
	}
}

func buildCommand(c ast.Command) Task {
	switch x := c.(type) {
	case *ast.Simple:
		return &simpleCommandTask{cmd: x}
	case *ast.BraceGroup:
		return &braceGroupTask{body: buildSequence(x.Body).(*sequenceTask)}
	case *ast.Subshell:
		return &subshellTask{body: x.Body}
	case *ast.If:
		return buildIf(x)
	case *ast.For:
		return &forTask{node: x}
	case *ast.Loop:
		return &loopTask{node: x}
	case *ast.Case:
		return &caseTask{node: x}
	case *ast.FuncDecl:
		return &funcDeclTask{node: x}
	default:
		panic("task: unknown Command variant")
	}
}

func buildIf(x *ast.If) Task {
	t := &ifTask{node: x}
	return t
}
