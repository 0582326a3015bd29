package ast

// Visitor's Visit is invoked for each node Walk encounters; if the returned
// Visitor is non-nil, Walk recurses into the node's children with it.
type Visitor interface {
	Visit(node Node) Visitor
}

func walkCommandLists(v Visitor, ls []*CommandList) {
	for _, l := range ls {
		Walk(v, l)
	}
}

func walkWords(v Visitor, ws []Word) {
	for _, w := range ws {
		Walk(v, w)
	}
}

// Walk traverses the AST in depth-first order, in the style of mvdan-sh's
// syntax.Walk: v.Visit(node) is called first, and if it returns a non-nil
// Visitor, Walk recurses into node's children with it.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch x := node.(type) {
	case *Program:
		walkCommandLists(v, x.Stmts)
	case *CommandList:
		Walk(v, x.List)
	case *Binop:
		Walk(v, x.Left)
		Walk(v, x.Right)
	case *Pipeline:
		for _, s := range x.Commands {
			Walk(v, s)
		}
	case *Stmt:
		Walk(v, x.Cmd)
		for _, r := range x.Redirs {
			Walk(v, r)
		}
	case *Simple:
		if x.Name != nil {
			Walk(v, x.Name)
		}
		walkWords(v, x.Args)
		for _, r := range x.Redirs {
			Walk(v, r)
		}
		for _, a := range x.Assigns {
			Walk(v, a)
		}
	case *BraceGroup:
		walkCommandLists(v, x.Body)
	case *Subshell:
		walkCommandLists(v, x.Body)
	case *If:
		walkCommandLists(v, x.Cond)
		walkCommandLists(v, x.Body)
		if x.Else != nil {
			Walk(v, x.Else)
		}
		walkCommandLists(v, x.ElseStmts)
	case *For:
		walkWords(v, x.List)
		walkCommandLists(v, x.Body)
	case *Loop:
		walkCommandLists(v, x.Cond)
		walkCommandLists(v, x.Body)
	case *Case:
		Walk(v, x.Subject)
		for _, it := range x.Items {
			walkWords(v, it.Patterns)
			walkCommandLists(v, it.Body)
		}
	case *FuncDecl:
		Walk(v, x.Body)
	case *Redirect:
		Walk(v, x.Word)
		for _, l := range x.HereDoc {
			Walk(v, l)
		}
	case *Assign:
		Walk(v, x.Value)
	case *Parameter:
		if x.Arg != nil {
			Walk(v, x.Arg)
		}
	case *CmdSubst:
		walkCommandLists(v, x.Program.Stmts)
	case *List:
		for _, c := range x.Children {
			Walk(v, c)
		}
	case *String, *Arithmetic:
		// leaves
	}

	v.Visit(nil)
}
