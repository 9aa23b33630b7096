package syntax

// Node kinds of the C and C++ tree-sitter grammars used by the named queries.
const (
	KindFunctionDefinition   = "function_definition"
	KindDeclaration          = "declaration"
	KindIfStatement          = "if_statement"
	KindWhileStatement       = "while_statement"
	KindDoStatement          = "do_statement"
	KindForStatement         = "for_statement"
	KindForRangeLoop         = "for_range_loop"
	KindSwitchStatement      = "switch_statement"
	KindAssignmentExpression = "assignment_expression"
	KindInitDeclarator       = "init_declarator"
	KindFieldDeclaration     = "field_declaration"
	KindReturnStatement      = "return_statement"
	KindBinaryExpression     = "binary_expression"
	KindUnaryExpression      = "unary_expression"
	KindCallExpression       = "call_expression"
	KindStructSpecifier      = "struct_specifier"
	KindEnumSpecifier        = "enum_specifier"
	KindComment              = "comment"
	KindPreprocDef           = "preproc_def"
	KindPreprocInclude       = "preproc_include"

	KindParenthesizedExpression = "parenthesized_expression"
	KindConditionClause         = "condition_clause"
	KindCompoundStatement       = "compound_statement"
)

// Query returns every node under root (root included) whose kind is one of
// kinds. Nodes are visited pre-order, children left to right, so the result
// is in ascending start byte order and identical across calls.
func (t *Tree) Query(root NodeID, kinds ...string) []NodeID {
	var out []NodeID
	t.Walk(root, func(id NodeID) bool {
		if matchKind(t.nodes[id].Kind, kinds) {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Walk visits root and its descendants pre-order. Returning false from fn
// skips the children of the node just visited.
func (t *Tree) Walk(root NodeID, fn func(NodeID) bool) {
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(id) {
			continue
		}
		n := &t.nodes[id]
		for i := n.count - 1; i >= 0; i-- {
			stack = append(stack, n.first+NodeID(i))
		}
	}
}

func matchKind(kind string, kinds []string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (t *Tree) FunctionDefinitions(root NodeID) []NodeID {
	return t.Query(root, KindFunctionDefinition)
}

func (t *Tree) Declarations(root NodeID) []NodeID {
	return t.Query(root, KindDeclaration)
}

func (t *Tree) IfStatements(root NodeID) []NodeID {
	return t.Query(root, KindIfStatement)
}

func (t *Tree) WhileStatements(root NodeID) []NodeID {
	return t.Query(root, KindWhileStatement)
}

func (t *Tree) ForStatements(root NodeID) []NodeID {
	return t.Query(root, KindForStatement)
}

func (t *Tree) AssignmentExpressions(root NodeID) []NodeID {
	return t.Query(root, KindAssignmentExpression)
}

func (t *Tree) ReturnStatements(root NodeID) []NodeID {
	return t.Query(root, KindReturnStatement)
}

func (t *Tree) BinaryExpressions(root NodeID) []NodeID {
	return t.Query(root, KindBinaryExpression)
}

func (t *Tree) UnaryExpressions(root NodeID) []NodeID {
	return t.Query(root, KindUnaryExpression)
}

func (t *Tree) CallExpressions(root NodeID) []NodeID {
	return t.Query(root, KindCallExpression)
}

func (t *Tree) StructSpecifiers(root NodeID) []NodeID {
	return t.Query(root, KindStructSpecifier)
}

func (t *Tree) EnumSpecifiers(root NodeID) []NodeID {
	return t.Query(root, KindEnumSpecifier)
}

func (t *Tree) Comments(root NodeID) []NodeID {
	return t.Query(root, KindComment)
}

func (t *Tree) PreprocDefines(root NodeID) []NodeID {
	return t.Query(root, KindPreprocDef)
}

func (t *Tree) PreprocIncludes(root NodeID) []NodeID {
	return t.Query(root, KindPreprocInclude)
}

// Token returns the first anonymous direct child of id whose text is kind.
func (t *Tree) Token(id NodeID, kind string) NodeID {
	n := &t.nodes[id]
	for i := int32(0); i < n.count; i++ {
		c := &t.nodes[n.first+NodeID(i)]
		if !c.Named && c.Kind == kind {
			return n.first + NodeID(i)
		}
	}
	return None
}

// ConditionBody locates the condition and the braced body of a control
// statement among its direct children. For if, while and switch the
// condition is the parenthesized expression (or C++ condition clause)
// recorded under the condition field. For loops use the last direct ')'
// token of their header; a parenthesized header clause is not a condition. The
// body is the next non-comment sibling after the condition and must be a
// compound statement. ok is false when either is absent or the body precedes
// the condition.
func (t *Tree) ConditionBody(id NodeID) (cond, body NodeID, ok bool) {
	n := &t.nodes[id]
	cond = None
	closeParen := None
	for i := int32(0); i < n.count; i++ {
		c := n.first + NodeID(i)
		child := &t.nodes[c]
		switch {
		case child.Kind == ")" && !child.Named:
			closeParen = c
		case child.Field == "condition" && cond == None &&
			(child.Kind == KindParenthesizedExpression || child.Kind == KindConditionClause):
			cond = c
		}
	}
	switch n.Kind {
	case KindForStatement, KindForRangeLoop:
		cond = closeParen
	default:
		if cond == None {
			cond = closeParen
		}
	}
	if cond == None {
		return None, None, false
	}

	body = None
	for c := cond + 1; c < n.first+NodeID(n.count); c++ {
		if t.nodes[c].Kind == KindComment {
			continue
		}
		body = c
		break
	}
	if body == None || t.nodes[body].Kind != KindCompoundStatement {
		return None, None, false
	}
	if t.nodes[cond].EndByte > t.nodes[body].StartByte {
		return None, None, false
	}
	return cond, body, true
}

// ConditionBodyGap counts the ASCII space bytes between a control
// statement's condition and its braced body. Tabs and newlines do not count.
// ok is false when ConditionBody finds no such pair.
func (t *Tree) ConditionBodyGap(id NodeID) (gap int, ok bool) {
	cond, body, ok := t.ConditionBody(id)
	if !ok {
		return 0, false
	}
	for _, b := range t.src[t.nodes[cond].EndByte:t.nodes[body].StartByte] {
		if b == ' ' {
			gap++
		}
	}
	return gap, true
}
