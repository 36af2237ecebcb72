// SPDX-License-Identifier: MPL-2.0

// Package cmdspan tiles a command string with classified spans.
//
// The classifier parses the command with mvdan.cc/sh syntax and paints
// each byte with a kind: command heads and generic arguments are
// Executed, interpreter inline bodies are InlineCode, known-safe string
// arguments (commit messages, search patterns) and single-quoted
// literals are data, heredoc bodies and comments are carved out.
// Anything the parser cannot handle degrades conservatively: a parse
// failure classifies the entire command as one Executed span.
//
// Alongside the spans the classifier emits a masked copy of the command
// (data bytes replaced by spaces, offsets preserved) that the evaluator
// runs patterns against, the whole tokens found in executable spans for
// keyword gating, and the extracted heredoc and inline-interpreter
// bodies for the tiered scanner.
package cmdspan

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// maxSubstDepth caps recursion into $(...) and backtick substitutions.
const maxSubstDepth = 8

// interpreterLangs maps command heads that accept inline code via
// -c/-e/-p/--command to the language of that code.
var interpreterLangs = map[string]string{
	"bash": "shell", "sh": "shell", "zsh": "shell", "dash": "shell", "ksh": "shell",
	"python": "python", "python2": "python", "python3": "python",
	"node": "javascript", "nodejs": "javascript",
	"perl": "perl", "ruby": "ruby",
	"psql": "sql", "mysql": "sql", "sqlite3": "sql",
	"redis-cli": "redis", "mongo": "javascript", "mongosh": "javascript",
}

// inlineFlags introduce an inline code argument for interpreter heads.
var inlineFlags = map[string]bool{
	"-c": true, "-e": true, "-p": true, "--command": true, "--eval": true,
}

type classifier struct {
	src   string
	kinds []Kind
	// data marks bytes excluded from matching (Data, Comment,
	// HeredocBody, and safe Argument values).
	data []bool

	out   Classification
	nodes []syntax.Node
	depth int
}

// Classify tiles cmd with spans and derives the evaluator inputs.
func Classify(cmd string) *Classification {
	c := &classifier{
		src:   cmd,
		kinds: make([]Kind, len(cmd)),
		data:  make([]bool, len(cmd)),
	}
	for i := range c.kinds {
		c.kinds[i] = Unknown
	}

	parser := syntax.NewParser(syntax.KeepComments(true))
	file, err := parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return c.fallback()
	}

	for _, stmt := range file.Stmts {
		c.collectSegments(stmt)
	}
	syntax.Walk(file, c.visit)

	c.finish()
	return &c.out
}

// fallback treats the whole command as a single Executed span. Used
// when the shell parser rejects the input; ambiguity fails closed.
func (c *classifier) fallback() *Classification {
	for i := range c.kinds {
		c.kinds[i] = Executed
	}
	c.out.ParseFailed = true
	c.out.Segments = lexicalSegments(c.src)
	c.finish()
	return &c.out
}

func (c *classifier) visit(node syntax.Node) bool {
	if node == nil {
		if n := len(c.nodes); n > 0 {
			if _, ok := c.nodes[n-1].(*syntax.CmdSubst); ok {
				c.depth--
			}
			c.nodes = c.nodes[:n-1]
		}
		return true
	}

	switch n := node.(type) {
	case *syntax.CmdSubst:
		c.depth++
		if c.depth > maxSubstDepth {
			c.paint(int(n.Pos().Offset()), int(n.End().Offset()), Unknown, false)
			c.depth--
			return false
		}
	case *syntax.CallExpr:
		c.classifyCall(n)
	case *syntax.Comment:
		c.paint(int(n.Pos().Offset()), int(n.End().Offset()), Comment, true)
	case *syntax.Stmt:
		c.classifyRedirs(n)
	case *syntax.BinaryCmd:
		if n.Op == syntax.Pipe || n.Op == syntax.PipeAll {
			if head := stmtHead(n.Y); head != "" {
				if _, ok := interpreterLangs[head]; ok {
					c.out.PipedInterpreters = append(c.out.PipedInterpreters, head)
				}
			}
		}
	}
	c.nodes = append(c.nodes, node)
	return true
}

// classifyCall paints one simple command: the whole call region is
// Executed, then safe string arguments, plain single-quoted literals,
// and interpreter inline bodies are carved out.
func (c *classifier) classifyCall(call *syntax.CallExpr) {
	if len(call.Args) == 0 {
		return
	}
	c.paint(int(call.Pos().Offset()), int(call.End().Offset()), Executed, false)

	head := wordLit(call.Args[0])
	sub := ""
	if len(call.Args) > 1 {
		if s := wordLit(call.Args[1]); s != "" && !strings.HasPrefix(s, "-") {
			sub = s
		}
	}
	_, isInterp := interpreterLangs[head]

	for i := 1; i < len(call.Args); i++ {
		w := call.Args[i]
		arg := wordLit(w)

		// Interpreter inline form: the argument after -c/-e/-p holds
		// code in the interpreter's language.
		if isInterp && inlineFlags[arg] && i+1 < len(call.Args) {
			body := call.Args[i+1]
			start, end := innerRange(body, c.src)
			c.paint(start, end, InlineCode, false)
			c.out.Inline = append(c.out.Inline, InlineBody{
				Lang: interpreterLangs[head],
				Body: wordText(body, c.src),
				Span: Span{Start: start, End: end, Kind: InlineCode, Lang: interpreterLangs[head]},
			})
			i++
			continue
		}

		// Safe string-argument registry: the value is data.
		if safeArgFlag(head, sub, arg) && i+1 < len(call.Args) {
			val := call.Args[i+1]
			s, e := int(val.Pos().Offset()), int(val.End().Offset())
			c.paint(s, e, Argument, true)
			i++
			continue
		}

		// Combined --flag=value form.
		if eq := strings.IndexByte(arg, '='); eq > 0 && strings.HasPrefix(arg, "-") {
			if safeArgFlag(head, sub, arg[:eq]) {
				s := int(w.Pos().Offset()) + eq + 1
				c.paint(s, int(w.End().Offset()), Argument, true)
				continue
			}
		}

		if !strings.HasPrefix(arg, "-") && (dataOnly(head) || (safePositional(head, sub) && arg != sub)) {
			c.paint(int(w.Pos().Offset()), int(w.End().Offset()), Argument, true)
			continue
		}

		// A lone single-quoted literal outside an interpreter call is
		// data; inside one it may be executed, keep it visible.
		if !isInterp && wholeSingleQuoted(w) {
			c.paint(int(w.Pos().Offset()), int(w.End().Offset()), Data, true)
		}
	}
}

// classifyRedirs extracts heredoc and here-string bodies from a
// statement's redirects.
func (c *classifier) classifyRedirs(stmt *syntax.Stmt) {
	target := stmtHead(stmt)
	for _, r := range stmt.Redirs {
		switch r.Op {
		case syntax.Hdoc, syntax.DashHdoc:
			if r.Hdoc == nil {
				continue
			}
			start, end := int(r.Hdoc.Pos().Offset()), int(r.Hdoc.End().Offset())
			c.paint(start, end, HeredocBody, true)
			body := c.src[start:min(end, len(c.src))]
			if r.Op == syntax.DashHdoc {
				body = stripLeadingTabs(body)
			}
			c.out.Heredocs = append(c.out.Heredocs, Heredoc{
				Body:        body,
				Delim:       wordText(r.Word, c.src),
				QuotedDelim: delimQuoted(r.Word),
				Span:        Span{Start: start, End: end, Kind: HeredocBody},
				Target:      target,
			})
		case syntax.WordHdoc:
			// Here-string: the word is stdin data for the target.
			start, end := innerRange(r.Word, c.src)
			c.paint(start, end, HeredocBody, true)
			c.out.Heredocs = append(c.out.Heredocs, Heredoc{
				Body:   wordText(r.Word, c.src),
				Span:   Span{Start: start, End: end, Kind: HeredocBody},
				Target: target,
			})
		}
	}
}

// collectSegments flattens &&/||/| chains into leaf command ranges in
// execution order.
func (c *classifier) collectSegments(stmt *syntax.Stmt) {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok {
		switch bin.Op {
		case syntax.AndStmt, syntax.OrStmt, syntax.Pipe, syntax.PipeAll:
			c.collectSegments(bin.X)
			c.collectSegments(bin.Y)
			return
		}
	}
	c.out.Segments = append(c.out.Segments, Span{
		Start: int(stmt.Pos().Offset()),
		End:   min(int(stmt.End().Offset()), len(c.src)),
		Kind:  Executed,
	})
}

// paint sets the kind for [start, end); data marks the bytes masked.
func (c *classifier) paint(start, end int, kind Kind, data bool) {
	if start < 0 {
		start = 0
	}
	if end > len(c.kinds) {
		end = len(c.kinds)
	}
	for i := start; i < end; i++ {
		c.kinds[i] = kind
		c.data[i] = data
	}
}

// finish coalesces the per-byte paint into tiling spans, builds the
// masked command, and extracts gating tokens.
func (c *classifier) finish() {
	masked := []byte(c.src)
	for i := range masked {
		if c.data[i] && masked[i] != '\n' {
			masked[i] = ' '
		}
	}
	c.out.Masked = string(masked)

	for i := 0; i < len(c.kinds); {
		j := i
		for j < len(c.kinds) && c.kinds[j] == c.kinds[i] {
			j++
		}
		sp := Span{Start: i, End: j, Kind: c.kinds[i]}
		if c.kinds[i] == InlineCode {
			sp.Lang = inlineLangAt(c.out.Inline, i)
		}
		if c.kinds[i] == Argument && c.data[i] {
			sp.Context = "data"
		}
		c.out.Spans = append(c.out.Spans, sp)
		i = j
	}

	c.out.Tokens = extractTokens(c.out.Masked, c.kinds)

	if len(c.out.Segments) == 0 && len(c.src) > 0 {
		c.out.Segments = []Span{{Start: 0, End: len(c.src), Kind: Executed}}
	}
}

func inlineLangAt(inline []InlineBody, off int) string {
	for _, ib := range inline {
		if off >= ib.Span.Start && off < ib.Span.End {
			return ib.Lang
		}
	}
	return ""
}

func isTokenByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' || b == '_' || b == '-' || b == '.'
}

// extractTokens collects whole tokens from executable spans.
func extractTokens(masked string, kinds []Kind) []string {
	var toks []string
	seen := make(map[string]bool)
	i := 0
	for i < len(masked) {
		if !isTokenByte(masked[i]) || !kinds[i].executable() {
			i++
			continue
		}
		j := i
		for j < len(masked) && isTokenByte(masked[j]) && kinds[j].executable() {
			j++
		}
		tok := masked[i:j]
		tok = strings.Trim(tok, "-")
		if tok != "" && !seen[tok] {
			seen[tok] = true
			toks = append(toks, tok)
		}
		i = j
	}
	return toks
}

// lexicalSegments splits on unquoted ;, &&, ||, |, & for the parse
// failure path.
func lexicalSegments(src string) []Span {
	var segs []Span
	start := 0
	var inQuote byte
	flush := func(end int) {
		for start < end && (src[start] == ' ' || src[start] == '\t') {
			start++
		}
		if start < end {
			segs = append(segs, Span{Start: start, End: end, Kind: Executed})
		}
	}
	i := 0
	for i < len(src) {
		ch := src[i]
		if inQuote != 0 {
			if ch == inQuote {
				inQuote = 0
			} else if ch == '\\' && inQuote == '"' {
				i++
			}
			i++
			continue
		}
		switch ch {
		case '\'', '"':
			inQuote = ch
			i++
		case '\\':
			i += 2
		case ';', '&', '|':
			flush(i)
			for i < len(src) && (src[i] == ';' || src[i] == '&' || src[i] == '|') {
				i++
			}
			start = i
		default:
			i++
		}
	}
	flush(len(src))
	return segs
}

func stmtHead(stmt *syntax.Stmt) string {
	if stmt == nil {
		return ""
	}
	if call, ok := stmt.Cmd.(*syntax.CallExpr); ok && len(call.Args) > 0 {
		return wordLit(call.Args[0])
	}
	return ""
}

// wordLit returns the literal text of a word made only of Lit parts,
// or "" for anything with expansions or quoting.
func wordLit(w *syntax.Word) string {
	if w == nil {
		return ""
	}
	return w.Lit()
}

// wordText resolves the effective text of a word: single-quoted values
// unwrap, double quotes are stripped, everything else is the raw slice.
func wordText(w *syntax.Word, src string) string {
	if w == nil {
		return ""
	}
	if len(w.Parts) == 1 {
		switch p := w.Parts[0].(type) {
		case *syntax.SglQuoted:
			return p.Value
		case *syntax.DblQuoted:
			s, e := int(p.Pos().Offset())+1, int(p.End().Offset())-1
			if s <= e && e <= len(src) {
				return src[s:e]
			}
		}
	}
	s, e := int(w.Pos().Offset()), int(w.End().Offset())
	if e > len(src) {
		e = len(src)
	}
	return src[s:e]
}

// innerRange is the byte range of a word's content, excluding the outer
// quotes when the whole word is one quoted part.
func innerRange(w *syntax.Word, src string) (int, int) {
	s, e := int(w.Pos().Offset()), int(w.End().Offset())
	if e > len(src) {
		e = len(src)
	}
	if len(w.Parts) == 1 {
		switch w.Parts[0].(type) {
		case *syntax.SglQuoted, *syntax.DblQuoted:
			if e-s >= 2 {
				return s + 1, e - 1
			}
		}
	}
	return s, e
}

func wholeSingleQuoted(w *syntax.Word) bool {
	if w == nil || len(w.Parts) != 1 {
		return false
	}
	_, ok := w.Parts[0].(*syntax.SglQuoted)
	return ok
}

func delimQuoted(w *syntax.Word) bool {
	if w == nil {
		return false
	}
	for _, p := range w.Parts {
		switch p.(type) {
		case *syntax.SglQuoted, *syntax.DblQuoted:
			return true
		}
	}
	return false
}

func stripLeadingTabs(body string) string {
	lines := strings.Split(body, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimLeft(ln, "\t")
	}
	return strings.Join(lines, "\n")
}
