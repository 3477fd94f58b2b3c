package parser

import (
	"strconv"

	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/lexer"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// Parser is a recursive-descent parser over a fixed token slice, grounded
// on original_source/src/sql/parser/mod.rs's Peekable<Lexer> design
// (adapted to Go's slice+index idiom since the tokenizer already runs to
// completion before parsing starts).
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse tokenizes and parses one terminated SQL statement.
func Parse(sql string) (Statement, error) {
	tokens, err := lexer.Tokenize(sql)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.Token{Kind: lexer.TokenSemicolon}); err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, dberr.Parsef("unexpected token %s", tok)
	}
	return stmt, nil
}

func (p *Parser) peek() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (lexer.Token, error) {
	tok, ok := p.peek()
	if !ok {
		return lexer.Token{}, dberr.Parsef("unexpected end of input")
	}
	p.pos++
	return tok, nil
}

func (p *Parser) nextIdent() (string, error) {
	tok, err := p.next()
	if err != nil {
		return "", err
	}
	if tok.Kind != lexer.TokenIdent {
		return "", dberr.Parsef("expected identifier, got %s", tok)
	}
	return tok.Text, nil
}

func (p *Parser) expect(want lexer.Token) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok != want {
		return dberr.Parsef("expected %s, got %s", want, tok)
	}
	return nil
}

func (p *Parser) expectKeyword(kw lexer.Keyword) error {
	return p.expect(lexer.Token{Kind: lexer.TokenKeyword, Keyword: kw})
}

func (p *Parser) nextIf(pred func(lexer.Token) bool) (lexer.Token, bool) {
	tok, ok := p.peek()
	if !ok || !pred(tok) {
		return lexer.Token{}, false
	}
	p.pos++
	return tok, true
}

func (p *Parser) nextIfToken(want lexer.Token) bool {
	_, ok := p.nextIf(func(t lexer.Token) bool { return t == want })
	return ok
}

func (p *Parser) nextIfKeywordToken() (lexer.Token, bool) {
	return p.nextIf(func(t lexer.Token) bool { return t.Kind == lexer.TokenKeyword })
}

func kw(k lexer.Keyword) lexer.Token { return lexer.Token{Kind: lexer.TokenKeyword, Keyword: k} }

var (
	tokComma      = lexer.Token{Kind: lexer.TokenComma}
	tokSemicolon  = lexer.Token{Kind: lexer.TokenSemicolon}
	tokOpenParen  = lexer.Token{Kind: lexer.TokenOpenParen}
	tokCloseParen = lexer.Token{Kind: lexer.TokenCloseParen}
	tokAsterisk   = lexer.Token{Kind: lexer.TokenAsterisk}
	tokEqual      = lexer.Token{Kind: lexer.TokenEqual}
)

func (p *Parser) parseStatement() (Statement, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, dberr.Parsef("unexpected end of input")
	}
	if tok.Kind != lexer.TokenKeyword {
		return nil, dberr.Parsef("unexpected token %s", tok)
	}
	switch tok.Keyword {
	case lexer.Create, lexer.Drop:
		return p.parseDDL()
	case lexer.Select:
		return p.parseSelect()
	case lexer.Insert:
		return p.parseInsert()
	case lexer.Update:
		return p.parseUpdate()
	case lexer.Delete:
		return p.parseDelete()
	case lexer.Begin, lexer.Commit, lexer.Rollback:
		return p.parseTransaction()
	case lexer.Explain:
		return p.parseExplain()
	default:
		return nil, dberr.Parsef("unexpected token %s", tok)
	}
}

func (p *Parser) parseDDL() (Statement, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case tok == kw(lexer.Create):
		return p.parseCreateTable()
	case tok == kw(lexer.Drop):
		return p.parseDropTable()
	default:
		return nil, dberr.Parsef("unexpected token %s", tok)
	}
}

func (p *Parser) parseCreateTable() (Statement, error) {
	if err := p.expectKeyword(lexer.Table); err != nil {
		return nil, err
	}
	name, err := p.nextIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokOpenParen); err != nil {
		return nil, err
	}
	var columns []Column
	for {
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
		if !p.nextIfToken(tokComma) {
			break
		}
	}
	if err := p.expect(tokCloseParen); err != nil {
		return nil, err
	}
	return &CreateTableStatement{Name: name, Columns: columns}, nil
}

func (p *Parser) parseColumn() (Column, error) {
	name, err := p.nextIdent()
	if err != nil {
		return Column{}, err
	}
	tok, err := p.next()
	if err != nil {
		return Column{}, err
	}
	var dt types.DataType
	switch tok.Keyword {
	case lexer.Int, lexer.Integer:
		dt = types.Integer_
	case lexer.Bool, lexer.Boolean:
		dt = types.Boolean_
	case lexer.Float, lexer.Double:
		dt = types.Float_
	case lexer.String, lexer.Text, lexer.Varchar:
		dt = types.String_
	default:
		return Column{}, dberr.Parsef("unexpected token %s", tok)
	}
	col := Column{Name: name, DataType: dt}

	for {
		tok, ok := p.nextIfKeywordToken()
		if !ok {
			break
		}
		switch tok.Keyword {
		case lexer.Null:
			t := true
			col.Nullable = &t
		case lexer.Not:
			if err := p.expectKeyword(lexer.Null); err != nil {
				return Column{}, err
			}
			f := false
			col.Nullable = &f
		case lexer.Default:
			expr, err := p.parseExpression()
			if err != nil {
				return Column{}, err
			}
			col.Default = expr
		case lexer.Primary:
			if err := p.expectKeyword(lexer.Key); err != nil {
				return Column{}, err
			}
			col.PrimaryKey = true
		case lexer.Index:
			col.Index = true
		default:
			return Column{}, dberr.Parsef("unexpected keyword %s", tok.Keyword)
		}
	}
	return col, nil
}

func (p *Parser) parseDropTable() (Statement, error) {
	if err := p.expectKeyword(lexer.Table); err != nil {
		return nil, err
	}
	name, err := p.nextIdent()
	if err != nil {
		return nil, err
	}
	return &DropTableStatement{Name: name}, nil
}

func (p *Parser) parseInsert() (Statement, error) {
	if err := p.expectKeyword(lexer.Insert); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.Into); err != nil {
		return nil, err
	}
	table, err := p.nextIdent()
	if err != nil {
		return nil, err
	}

	var columns []string
	if p.nextIfToken(tokOpenParen) {
		for {
			col, err := p.nextIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)
			tok, err := p.next()
			if err != nil {
				return nil, err
			}
			if tok == tokCloseParen {
				break
			}
			if tok != tokComma {
				return nil, dberr.Parsef("unexpected token %s", tok)
			}
		}
	}

	if err := p.expectKeyword(lexer.Values); err != nil {
		return nil, err
	}
	var values [][]Expression
	for {
		if err := p.expect(tokOpenParen); err != nil {
			return nil, err
		}
		var exprs []Expression
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
			tok, err := p.next()
			if err != nil {
				return nil, err
			}
			if tok == tokCloseParen {
				break
			}
			if tok != tokComma {
				return nil, dberr.Parsef("unexpected token %s", tok)
			}
		}
		values = append(values, exprs)
		if !p.nextIfToken(tokComma) {
			break
		}
	}

	return &InsertStatement{Table: table, Columns: columns, Values: values}, nil
}

func (p *Parser) parseUpdate() (Statement, error) {
	if err := p.expectKeyword(lexer.Update); err != nil {
		return nil, err
	}
	table, err := p.nextIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.Set); err != nil {
		return nil, err
	}

	var set []SetClause
	seen := map[string]bool{}
	for {
		col, err := p.nextIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokEqual); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if seen[col] {
			return nil, dberr.Parsef("duplicate column %s for update", col)
		}
		seen[col] = true
		set = append(set, SetClause{Column: col, Value: value})
		if !p.nextIfToken(tokComma) {
			break
		}
	}

	where, err := p.parseWhereClause()
	if err != nil {
		return nil, err
	}
	return &UpdateStatement{Table: table, Set: set, Where: where}, nil
}

func (p *Parser) parseDelete() (Statement, error) {
	if err := p.expectKeyword(lexer.Delete); err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.From); err != nil {
		return nil, err
	}
	table, err := p.nextIdent()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhereClause()
	if err != nil {
		return nil, err
	}
	return &DeleteStatement{Table: table, Where: where}, nil
}

func (p *Parser) parseTransaction() (Statement, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Keyword {
	case lexer.Begin:
		return &BeginStatement{}, nil
	case lexer.Commit:
		return &CommitStatement{}, nil
	case lexer.Rollback:
		return &RollbackStatement{}, nil
	default:
		return nil, dberr.Parsef("unknown transaction command")
	}
}

func (p *Parser) parseExplain() (Statement, error) {
	if err := p.expectKeyword(lexer.Explain); err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok && tok == kw(lexer.Explain) {
		return nil, dberr.Parsef("cannot nest explain statement")
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ExplainStatement{Stmt: stmt}, nil
}

func (p *Parser) parseWhereClause() (Expression, error) {
	if !p.nextIfToken(kw(lexer.Where)) {
		return nil, nil
	}
	return p.parseOperationExpr()
}

func (p *Parser) parseHavingClause() (Expression, error) {
	if !p.nextIfToken(kw(lexer.Having)) {
		return nil, nil
	}
	return p.parseOperationExpr()
}

func (p *Parser) parseOrderClause() ([]OrderTerm, error) {
	var orders []OrderTerm
	if !p.nextIfToken(kw(lexer.Order)) {
		return orders, nil
	}
	if err := p.expectKeyword(lexer.By); err != nil {
		return nil, err
	}
	for {
		col, err := p.nextIdent()
		if err != nil {
			return nil, err
		}
		dir := Asc
		if tok, ok := p.nextIf(func(t lexer.Token) bool {
			return t == kw(lexer.Asc) || t == kw(lexer.Desc)
		}); ok {
			if tok.Keyword == lexer.Desc {
				dir = Desc
			}
		}
		orders = append(orders, OrderTerm{Column: col, Direction: dir})
		if !p.nextIfToken(tokComma) {
			break
		}
	}
	return orders, nil
}

func (p *Parser) parseSelectClause() ([]SelectItem, error) {
	if err := p.expectKeyword(lexer.Select); err != nil {
		return nil, err
	}
	var items []SelectItem
	if p.nextIfToken(tokAsterisk) {
		return items, nil
	}
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		alias := ""
		if p.nextIfToken(kw(lexer.As)) {
			alias, err = p.nextIdent()
			if err != nil {
				return nil, err
			}
		}
		items = append(items, SelectItem{Expr: expr, Alias: alias})
		if !p.nextIfToken(tokComma) {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseFromTableClause() (FromItem, error) {
	name, err := p.nextIdent()
	if err != nil {
		return nil, err
	}
	return FromTable{Name: name}, nil
}

func (p *Parser) parseFromClauseJoin() (JoinType, bool, error) {
	switch {
	case p.nextIfToken(kw(lexer.Cross)):
		if err := p.expectKeyword(lexer.Join); err != nil {
			return 0, false, err
		}
		return JoinCross, true, nil
	case p.nextIfToken(kw(lexer.Join)):
		return JoinInner, true, nil
	case p.nextIfToken(kw(lexer.Left)):
		if err := p.expectKeyword(lexer.Join); err != nil {
			return 0, false, err
		}
		return JoinLeft, true, nil
	case p.nextIfToken(kw(lexer.Right)):
		if err := p.expectKeyword(lexer.Join); err != nil {
			return 0, false, err
		}
		return JoinRight, true, nil
	default:
		return 0, false, nil
	}
}

// parseFromClause implements spec §4.6's FROM grammar, rewriting RIGHT JOIN
// to LEFT by swapping the equality predicate's sides so the executor only
// ever needs a LEFT outer-join implementation.
func (p *Parser) parseFromClause() (FromItem, error) {
	if err := p.expectKeyword(lexer.From); err != nil {
		return nil, err
	}
	item, err := p.parseFromTableClause()
	if err != nil {
		return nil, err
	}
	for {
		joinType, ok, err := p.parseFromClauseJoin()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		right, err := p.parseFromTableClause()
		if err != nil {
			return nil, err
		}

		var predicate Expression
		if joinType != JoinCross {
			if err := p.expectKeyword(lexer.On); err != nil {
				return nil, err
			}
			l, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokEqual); err != nil {
				return nil, err
			}
			r, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if joinType == JoinRight {
				l, r = r, l
			}
			predicate = &OperationExpr{Op: OpEqual, Left: l, Right: r}
		}

		// A RIGHT JOIN becomes a LEFT JOIN with its sides physically
		// swapped: the predicate's sides were already swapped above, so
		// swapping Left/Right here keeps each side of the predicate
		// aligned with its matching child (spec §4.6).
		if joinType == JoinRight {
			item = &FromJoin{Left: right, Right: item, JoinType: JoinLeft, Predicate: predicate}
		} else {
			item = &FromJoin{Left: item, Right: right, JoinType: joinType, Predicate: predicate}
		}
	}
	return item, nil
}

func (p *Parser) parseGroupClause() (Expression, error) {
	if !p.nextIfToken(kw(lexer.Group)) {
		return nil, nil
	}
	if err := p.expectKeyword(lexer.By); err != nil {
		return nil, err
	}
	return p.parseExpression()
}

func (p *Parser) parseSelect() (Statement, error) {
	selectItems, err := p.parseSelectClause()
	if err != nil {
		return nil, err
	}
	from, err := p.parseFromClause()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhereClause()
	if err != nil {
		return nil, err
	}
	groupBy, err := p.parseGroupClause()
	if err != nil {
		return nil, err
	}
	having, err := p.parseHavingClause()
	if err != nil {
		return nil, err
	}
	orderBy, err := p.parseOrderClause()
	if err != nil {
		return nil, err
	}
	var limit, offset Expression
	if p.nextIfToken(kw(lexer.Limit)) {
		limit, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if p.nextIfToken(kw(lexer.Offset)) {
		offset, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return &SelectStatement{
		Select:  selectItems,
		From:    from,
		Where:   where,
		GroupBy: groupBy,
		Having:  having,
		OrderBy: orderBy,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// parseOperationExpr parses WHERE/HAVING's single binary comparison:
// `<expr> (= | > | <) <expr>`, mirroring the original's asymmetric
// grammar where the left side is one primary expression and the right
// side admits full arithmetic precedence climbing.
func (p *Parser) parseOperationExpr() (Expression, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	var op OperatorKind
	switch tok.Kind {
	case lexer.TokenEqual:
		op = OpEqual
	case lexer.TokenGreaterThan:
		op = OpGreaterThan
	case lexer.TokenLessThan:
		op = OpLessThan
	default:
		return nil, dberr.Parsef("unexpected token %s", tok)
	}
	right, err := p.computeMathOperator(1)
	if err != nil {
		return nil, err
	}
	return &OperationExpr{Op: op, Left: left, Right: right}, nil
}

// parseExpression parses one primary expression: field, function call,
// numeric/string/boolean/null literal, or a parenthesized arithmetic
// expression.
func (p *Parser) parseExpression() (Expression, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case lexer.TokenIdent:
		if p.nextIfToken(tokOpenParen) {
			field, err := p.nextIdent()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokCloseParen); err != nil {
				return nil, err
			}
			return &FunctionExpr{Name: tok.Text, Field: field}, nil
		}
		return &FieldExpr{Name: tok.Text}, nil
	case lexer.TokenNumber:
		return parseNumberConst(tok.Text)
	case lexer.TokenOpenParen:
		expr, err := p.computeMathOperator(1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokCloseParen); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.TokenString:
		return &ConstExpr{Value: types.String(tok.Text)}, nil
	case lexer.TokenKeyword:
		switch tok.Keyword {
		case lexer.True:
			return &ConstExpr{Value: types.Boolean(true)}, nil
		case lexer.False:
			return &ConstExpr{Value: types.Boolean(false)}, nil
		case lexer.Null:
			return &ConstExpr{Value: types.Null()}, nil
		}
	}
	return nil, dberr.Parsef("unexpected expression token %s", tok)
}

func parseNumberConst(text string) (Expression, error) {
	allDigits := true
	for _, c := range text {
		if c < '0' || c > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, dberr.Parsef("invalid integer literal %q", text)
		}
		return &ConstExpr{Value: types.Integer(i)}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, dberr.Parsef("invalid float literal %q", text)
	}
	return &ConstExpr{Value: types.FloatValue(f)}, nil
}

// computeMathOperator implements precedence climbing over `+ - * /`,
// folding arithmetic between two constants eagerly into a Float constant
// (spec §4.6); a non-constant operand is a parse error since this surface
// has no column arithmetic.
func (p *Parser) computeMathOperator(minPrec int) (Expression, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || !tok.IsOperator() || tok.Precedence() < minPrec {
			break
		}
		nextPrec := tok.Precedence() + 1
		p.pos++
		right, err := p.computeMathOperator(nextPrec)
		if err != nil {
			return nil, err
		}
		left, err = foldArithmetic(tok.Kind, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func foldArithmetic(op lexer.TokenKind, l, r Expression) (Expression, error) {
	lc, ok := l.(*ConstExpr)
	if !ok {
		return nil, dberr.Parsef("cannot compute the expression")
	}
	rc, ok := r.(*ConstExpr)
	if !ok {
		return nil, dberr.Parsef("cannot compute the expression")
	}
	if !numericConst(lc.Value) || !numericConst(rc.Value) {
		return nil, dberr.Parsef("cannot compute the expression")
	}
	a, b := lc.Value.Float(), rc.Value.Float()
	var v float64
	switch op {
	case lexer.TokenAsterisk:
		v = a * b
	case lexer.TokenPlus:
		v = a + b
	case lexer.TokenMinus:
		v = a - b
	case lexer.TokenSlash:
		v = a / b
	default:
		return nil, dberr.Parsef("cannot compute the expression")
	}
	return &ConstExpr{Value: types.FloatValue(v)}, nil
}

func numericConst(v types.Value) bool {
	return v.Kind == types.KindInteger || v.Kind == types.KindFloat
}
