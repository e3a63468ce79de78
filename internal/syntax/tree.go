package syntax

// NodeKind identifies the syntactic construct a Node represents.
type NodeKind int

const (
	NodeError NodeKind = iota
	NodeToken // leaf wrapping a single Token (including trivia)

	NodeSourceFile
	NodeProgram
	NodeFunction
	NodeFunctionBlock
	NodeMethod
	NodeInterface
	NodeClass
	NodeNamespace
	NodeUsingDirective
	NodeConfiguration
	NodeResource
	NodeTask
	NodeProgramConfig

	NodeVarSection
	NodeVarDecl
	NodeTypeDecl
	NodeStructDecl
	NodeStructField
	NodeEnumDecl
	NodeEnumMember
	NodeTypeRef
	NodeArrayTypeRef
	NodeSubrangeTypeRef
	NodeStringTypeRef
	NodePointerTypeRef
	NodeRefTypeRef
	NodeParamList

	NodeStatementList
	NodeAssignStmt
	NodeRefAssignStmt
	NodeCallStmt
	NodeIfStmt
	NodeElsifClause
	NodeCaseStmt
	NodeCaseLabelGroup
	NodeForStmt
	NodeWhileStmt
	NodeRepeatStmt
	NodeReturnStmt
	NodeExitStmt
	NodeContinueStmt

	NodeBinaryExpr
	NodeUnaryExpr
	NodeParenExpr
	NodeCallExpr
	NodeArgList
	NodeNamedArg
	NodeMemberExpr
	NodeIndexExpr
	NodeDerefExpr
	NodeRefExpr
	NodeIdentExpr
	NodeLiteralExpr
)

// Node is a green-tree node: an immutable, structurally-shared element of
// the syntax tree. Nodes are addressed by index into a Tree's arena rather
// than by pointer, so the same subtree can be shared across revisions
// without introducing cycles (see DESIGN NOTES in §9).
type Node struct {
	Kind     NodeKind
	Token    Token // valid only when Kind == NodeToken
	Children []int // indices into Tree.nodes
	Start    int   // byte offset, inclusive; derived from children at build time
	End      int   // byte offset, exclusive
}

// Tree is an arena of Nodes forming a lossless concrete syntax tree. Root is
// the index of the NodeSourceFile node, which the parser adds last; parse
// errors are returned separately by ParseSourceFile.
type Tree struct {
	nodes []Node
	Root  int
}

// Node returns the node at index i.
func (t *Tree) Node(i int) Node {
	return t.nodes[i]
}

// NumNodes returns the number of nodes in the arena.
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

// Text reconstructs the exact source text spanned by node i, given the
// original source string. Because every token including trivia is present
// in the tree, this always round-trips byte-for-byte.
func (t *Tree) Text(i int, src string) string {
	n := t.nodes[i]
	return src[n.Start:n.End]
}

// builder accumulates nodes into a Tree's arena during parsing.
type builder struct {
	nodes []Node
}

func (b *builder) addToken(tok Token) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Kind:  NodeToken,
		Token: tok,
		Start: tok.Start,
		End:   tok.End,
	})
	return idx
}

func (b *builder) addNode(kind NodeKind, children ...int) int {
	n := Node{Kind: kind, Children: children}
	if len(children) > 0 {
		n.Start = b.nodes[children[0]].Start
		n.End = b.nodes[children[len(children)-1]].End
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, n)
	return idx
}

func (b *builder) tree(root int) *Tree {
	return &Tree{nodes: b.nodes, Root: root}
}

// RedNode is an on-demand view of a Node with a parent back-reference,
// built lazily so navigation (Parent, preceding/following sibling) is
// available without storing parent pointers in the shared green tree
// itself.
type RedNode struct {
	tree   *Tree
	index  int
	parent *RedNode
}

// Red returns the red (parent-aware) view of the tree's root.
func (t *Tree) Red() *RedNode {
	return &RedNode{tree: t, index: t.Root}
}

// Kind returns the NodeKind of the underlying green node.
func (r *RedNode) Kind() NodeKind {
	return r.tree.nodes[r.index].Kind
}

// Index is this red node's index into the tree's arena.
func (r *RedNode) Index() int {
	return r.index
}

// Range returns the byte range [start, end) spanned by this node.
func (r *RedNode) Range() (int, int) {
	n := r.tree.nodes[r.index]
	return n.Start, n.End
}

// Parent returns the red view of this node's parent, or nil at the root.
func (r *RedNode) Parent() *RedNode {
	return r.parent
}

// Children returns red views of this node's children, in order.
func (r *RedNode) Children() []*RedNode {
	n := r.tree.nodes[r.index]
	out := make([]*RedNode, len(n.Children))
	for i, ci := range n.Children {
		out[i] = &RedNode{tree: r.tree, index: ci, parent: r}
	}
	return out
}

// Token returns the underlying Token if this is a leaf node.
func (r *RedNode) Token() Token {
	return r.tree.nodes[r.index].Token
}

// NonTrivia returns the children of this node that are not trivia tokens
// (or are themselves non-leaf nodes).
func (r *RedNode) NonTrivia() []*RedNode {
	var out []*RedNode
	for _, c := range r.Children() {
		if c.Kind() == NodeToken && c.Token().IsTrivia() {
			continue
		}
		out = append(out, c)
	}
	return out
}
