package compiler

import (
	"fmt"
	"strconv"

	"ghost/runtime"
)

// FunctionType distinguishes the four Compiler states of spec.md 4.3.
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeMethod
	TypeInitializer
	TypeScript
)

// Local is one entry of a FuncCompiler's locals sequence (spec.md
// 4.3): depth is -1 until its initializer has finished evaluating, so
// `var x = x;` in a local scope is reported as a compile error
// ("Can't read local variable in its own initializer.") instead of
// reading the uninitialized slot.
type Local struct {
	name       Token
	depth      int
	isCaptured bool
}

// Upvalue is one entry of a FuncCompiler's upvalues sequence.
type Upvalue struct {
	index   byte
	isLocal bool
}

// FuncCompiler is per-nested-function compiler state, threaded via
// enclosing the way the teacher's AtomScope chains Parent (spec.md
// 4.3).
type FuncCompiler struct {
	enclosing  *FuncCompiler
	function   *runtime.ObjFunction
	fnType     FunctionType
	locals     []Local
	upvalues   []Upvalue
	scopeDepth int
}

// ClassCompiler tracks the enclosing-class chain so `this` and `super`
// can be rejected outside a class body and `super` resolved to the
// synthetic local pushed by inheritance (spec.md 4.3).
type ClassCompiler struct {
	enclosing     *ClassCompiler
	hasSuperclass bool
}

// Parser holds scanner + token lookahead + panic-mode error recovery
// state, plus the active function/class compiler chains (spec.md 4.3).
type Parser struct {
	scanner  *Scanner
	vm       *runtime.VM
	current  Token
	previous Token

	hadError  bool
	panicMode bool
	errors    []*runtime.CompileError

	compiler      *FuncCompiler
	classCompiler *ClassCompiler
}

// Compile runs the single-pass Pratt compiler over source, returning
// the top-level script Function on success or the accumulated
// diagnostics on failure (spec.md 4.3, "compilation returns success
// iff no error was reported").
func Compile(vm *runtime.VM, source []byte) (*runtime.ObjFunction, []*runtime.CompileError) {
	p := &Parser{scanner: NewScanner(source), vm: vm}
	p.pushCompiler(TypeScript, "")

	p.advance()
	for !p.match(TokenEOF) {
		p.declaration()
	}

	fn, _ := p.endCompiler()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return fn, nil
}

// ---- compiler-state helpers ----

func (p *Parser) pushCompiler(fnType FunctionType, name string) {
	fc := &FuncCompiler{enclosing: p.compiler, fnType: fnType, scopeDepth: 0}
	fc.function = p.vm.NewFunction(nil, 0)
	p.vm.PushCompilerRoot(fc.function)
	if name != "" {
		fc.function.Name = p.vm.CopyString(name)
	}

	reserved := Local{depth: 0}
	if fnType == TypeMethod || fnType == TypeInitializer {
		reserved.name = Token{Kind: TokenIdentifier, Lexeme: "this"}
	}
	fc.locals = append(fc.locals, reserved)

	p.compiler = fc
}

// endCompiler finalizes the current function, restores the enclosing
// compiler, and returns the compiled Function plus its own upvalue
// list (the caller emits the CLOSURE operand pairs into the enclosing
// chunk from that list).
func (p *Parser) endCompiler() (*runtime.ObjFunction, []Upvalue) {
	p.emitReturn()
	fc := p.compiler
	p.vm.PopCompilerRoot()
	p.compiler = fc.enclosing
	return fc.function, fc.upvalues
}

func (p *Parser) currentChunk() *runtime.Chunk {
	return &p.compiler.function.Chunk
}

// ---- token stream ----

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.ScanToken()
		if p.current.Kind != TokenError {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(kind TokenKind) bool { return p.current.Kind == kind }

func (p *Parser) match(kind TokenKind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(kind TokenKind, message string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *Parser) errorAtCurrent(message string) { p.errorAt(p.current, message) }
func (p *Parser) error(message string)          { p.errorAt(p.previous, message) }

func (p *Parser) errorAt(token Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	where := fmt.Sprintf("at '%s'", token.Lexeme)
	if token.Kind == TokenEOF {
		where = "at end"
	} else if token.Kind == TokenError {
		where = ""
	}
	full := message
	if where != "" {
		full = fmt.Sprintf("%s: %s", where, message)
	}
	p.errors = append(p.errors, &runtime.CompileError{Message: full, Line: token.Line})
}

func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != TokenEOF {
		if p.previous.Kind == TokenSemicolon {
			return
		}
		switch p.current.Kind {
		case TokenClass, TokenFunction, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		p.advance()
	}
}

// ---- byte emission ----

func (p *Parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *Parser) emitOp(op runtime.OpCode) { p.emitByte(byte(op)) }

func (p *Parser) emitBytes(op runtime.OpCode, operand byte) {
	p.emitOp(op)
	p.emitByte(operand)
}

func (p *Parser) emitReturn() {
	if p.compiler.fnType == TypeInitializer {
		p.emitBytes(runtime.OpGetLocal, 0)
	} else {
		p.emitOp(runtime.OpNull)
	}
	p.emitOp(runtime.OpReturn)
}

func (p *Parser) emitConstant(v runtime.Value) {
	p.emitBytes(runtime.OpConstant, p.makeConstant(v))
}

func (p *Parser) makeConstant(v runtime.Value) byte {
	idx := p.currentChunk().AddConstant(v)
	if idx > 255 {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (p *Parser) emitJump(instruction runtime.OpCode) int {
	p.emitOp(instruction)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

func (p *Parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
	}
	p.currentChunk().Code[offset] = byte((jump >> 8) & 0xff)
	p.currentChunk().Code[offset+1] = byte(jump & 0xff)
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(runtime.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
	}
	p.emitByte(byte((offset >> 8) & 0xff))
	p.emitByte(byte(offset & 0xff))
}

// ---- scopes and locals ----

func (p *Parser) beginScope() { p.compiler.scopeDepth++ }

func (p *Parser) endScope() {
	p.compiler.scopeDepth--
	locals := p.compiler.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > p.compiler.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			p.emitOp(runtime.OpCloseUpvalue)
		} else {
			p.emitOp(runtime.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	p.compiler.locals = locals
}

func (p *Parser) identifierConstant(name Token) byte {
	return p.makeConstant(runtime.ObjVal(p.vm.CopyString(name.Lexeme)))
}

func (p *Parser) addLocal(name Token) {
	if len(p.compiler.locals) == 256 {
		p.error("Too many local variables in function.")
		return
	}
	p.compiler.locals = append(p.compiler.locals, Local{name: name, depth: -1})
}

func (p *Parser) declareVariable() {
	if p.compiler.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := len(p.compiler.locals) - 1; i >= 0; i-- {
		local := p.compiler.locals[i]
		if local.depth != -1 && local.depth < p.compiler.scopeDepth {
			break
		}
		if local.name.Lexeme == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *Parser) parseVariable(errorMessage string) byte {
	p.consume(TokenIdentifier, errorMessage)
	p.declareVariable()
	if p.compiler.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *Parser) markInitialized() {
	if p.compiler.scopeDepth == 0 {
		return
	}
	p.compiler.locals[len(p.compiler.locals)-1].depth = p.compiler.scopeDepth
}

func (p *Parser) defineVariable(global byte) {
	if p.compiler.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(runtime.OpDefineGlobal, global)
}

func resolveLocal(fc *FuncCompiler, name Token) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name.Lexeme == name.Lexeme {
			return i
		}
	}
	return -1
}

func addUpvalue(fc *FuncCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) == 256 {
		return -1
	}
	fc.upvalues = append(fc.upvalues, Upvalue{index: index, isLocal: isLocal})
	fc.function.UpvalueCount = len(fc.upvalues)
	return len(fc.upvalues) - 1
}

// resolveUpvalue implements spec.md 4.3's three-tier variable
// resolution: current locals were already tried by the caller; this
// walks the enclosing compiler's locals (capturing as a local
// upvalue) and then its own upvalues (capturing as a non-local one).
func resolveUpvalue(p *Parser, fc *FuncCompiler, name Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return addUpvalue(fc, byte(local), true)
	}
	if upvalue := resolveUpvalue(p, fc.enclosing, name); upvalue != -1 {
		return addUpvalue(fc, byte(upvalue), false)
	}
	return -1
}

func (p *Parser) namedVariable(name Token, canAssign bool) {
	var getOp, setOp runtime.OpCode
	arg := resolveLocal(p.compiler, name)
	if arg != -1 {
		if p.compiler.locals[arg].depth == -1 {
			p.error("Can't read local variable in its own initializer.")
		}
		getOp, setOp = runtime.OpGetLocal, runtime.OpSetLocal
	} else if arg = resolveUpvalue(p, p.compiler, name); arg != -1 {
		getOp, setOp = runtime.OpGetUpvalue, runtime.OpSetUpvalue
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = runtime.OpGetGlobal, runtime.OpSetGlobal
	}

	if canAssign && p.match(TokenEqual) {
		p.expression()
		p.emitBytes(setOp, byte(arg))
	} else {
		p.emitBytes(getOp, byte(arg))
	}
}

func syntheticToken(text string) Token {
	return Token{Kind: TokenIdentifier, Lexeme: text}
}

// ---- declarations and statements ----

func (p *Parser) declaration() {
	switch {
	case p.match(TokenClass):
		p.classDeclaration()
	case p.match(TokenFunction):
		p.funDeclaration()
	case p.match(TokenVar):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) classDeclaration() {
	p.consume(TokenIdentifier, "Expect class name.")
	className := p.previous
	nameConstant := p.identifierConstant(className)
	p.declareVariable()

	p.emitBytes(runtime.OpClass, nameConstant)
	p.defineVariable(nameConstant)

	classCompiler := &ClassCompiler{enclosing: p.classCompiler}
	p.classCompiler = classCompiler

	if p.match(TokenLess) {
		p.consume(TokenIdentifier, "Expect superclass name.")
		superName := p.previous
		p.namedVariable(superName, false)
		if superName.Lexeme == className.Lexeme {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal(syntheticToken("super"))
		p.defineVariable(0)

		p.namedVariable(className, false)
		p.emitOp(runtime.OpInherit)
		classCompiler.hasSuperclass = true
	}

	p.namedVariable(className, false)
	p.consume(TokenLeftBrace, "Expect '{' before class body.")
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		p.method()
	}
	p.consume(TokenRightBrace, "Expect '}' after class body.")
	p.emitOp(runtime.OpPop)

	if classCompiler.hasSuperclass {
		p.endScope()
	}
	p.classCompiler = classCompiler.enclosing
}

func (p *Parser) method() {
	p.consume(TokenIdentifier, "Expect method name.")
	name := p.previous
	constant := p.identifierConstant(name)

	fnType := TypeMethod
	if name.Lexeme == "init" {
		fnType = TypeInitializer
	}
	p.function(fnType)
	p.emitBytes(runtime.OpMethod, constant)
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(TypeFunction)
	p.defineVariable(global)
}

func (p *Parser) function(fnType FunctionType) {
	p.pushCompiler(fnType, p.previous.Lexeme)
	p.beginScope()

	p.consume(TokenLeftParen, "Expect '(' after function name.")
	if !p.check(TokenRightParen) {
		for {
			p.compiler.function.Arity++
			if p.compiler.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "Expect ')' after parameters.")
	p.consume(TokenLeftBrace, "Expect '{' before function body.")
	p.block()

	fn, upvalues := p.endCompiler()
	p.emitBytes(runtime.OpClosure, p.makeConstant(runtime.ObjVal(fn)))
	for _, uv := range upvalues {
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(uv.index)
	}
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(TokenEqual) {
		p.expression()
	} else {
		p.emitOp(runtime.OpNull)
	}
	p.consume(TokenSemicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) statement() {
	switch {
	case p.match(TokenPrint):
		p.printStatement()
	case p.match(TokenFor):
		p.forStatement()
	case p.match(TokenIf):
		p.ifStatement()
	case p.match(TokenReturn):
		p.returnStatement()
	case p.match(TokenWhile):
		p.whileStatement()
	case p.match(TokenLeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		p.declaration()
	}
	p.consume(TokenRightBrace, "Expect '}' after block.")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(TokenSemicolon, "Expect ';' after value.")
	p.emitOp(runtime.OpPrint)
}

func (p *Parser) returnStatement() {
	if p.compiler.fnType == TypeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(TokenSemicolon) {
		p.emitReturn()
		return
	}
	if p.compiler.fnType == TypeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(TokenSemicolon, "Expect ';' after return value.")
	p.emitOp(runtime.OpReturn)
}

func (p *Parser) ifStatement() {
	p.consume(TokenLeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(runtime.OpJumpIfFalse)
	p.emitOp(runtime.OpPop)
	p.statement()

	elseJump := p.emitJump(runtime.OpJump)
	p.patchJump(thenJump)
	p.emitOp(runtime.OpPop)

	if p.match(TokenElse) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.consume(TokenLeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(runtime.OpJumpIfFalse)
	p.emitOp(runtime.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(runtime.OpPop)
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(TokenLeftParen, "Expect '(' after 'for'.")
	switch {
	case p.match(TokenSemicolon):
	case p.match(TokenVar):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1
	if !p.match(TokenSemicolon) {
		p.expression()
		p.consume(TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(runtime.OpJumpIfFalse)
		p.emitOp(runtime.OpPop)
	}

	if !p.check(TokenRightParen) {
		bodyJump := p.emitJump(runtime.OpJump)
		incrementStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(runtime.OpPop)
		p.consume(TokenRightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	} else {
		p.consume(TokenRightParen, "Expect ')' after for clauses.")
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(runtime.OpPop)
	}
	p.endScope()
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(TokenSemicolon, "Expect ';' after expression.")
	p.emitOp(runtime.OpPop)
}

// ---- Pratt expression parsing ----

type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[TokenKind]parseRule

func init() {
	rules = map[TokenKind]parseRule{
		TokenLeftParen:    {prefix: (*Parser).grouping, infix: (*Parser).call, precedence: PrecCall},
		TokenLeftBracket:  {prefix: (*Parser).listLiteral, infix: (*Parser).subscript, precedence: PrecCall},
		TokenDot:          {infix: (*Parser).dot, precedence: PrecCall},
		TokenMinus:        {prefix: (*Parser).unary, infix: (*Parser).binary, precedence: PrecTerm},
		TokenPlus:         {infix: (*Parser).binary, precedence: PrecTerm},
		TokenSlash:        {infix: (*Parser).binary, precedence: PrecFactor},
		TokenStar:         {infix: (*Parser).binary, precedence: PrecFactor},
		TokenBang:         {prefix: (*Parser).unary},
		TokenBangEqual:    {infix: (*Parser).binary, precedence: PrecEquality},
		TokenEqualEqual:   {infix: (*Parser).binary, precedence: PrecEquality},
		TokenGreater:      {infix: (*Parser).binary, precedence: PrecComparison},
		TokenGreaterEqual: {infix: (*Parser).binary, precedence: PrecComparison},
		TokenLess:         {infix: (*Parser).binary, precedence: PrecComparison},
		TokenLessEqual:    {infix: (*Parser).binary, precedence: PrecComparison},
		TokenIdentifier:   {prefix: (*Parser).variable},
		TokenString:       {prefix: (*Parser).stringLiteral},
		TokenNumber:       {prefix: (*Parser).number},
		TokenAnd:          {infix: (*Parser).and, precedence: PrecAnd},
		TokenOr:           {infix: (*Parser).or, precedence: PrecOr},
		TokenFalse:        {prefix: (*Parser).literal},
		TokenTrue:         {prefix: (*Parser).literal},
		TokenNull:         {prefix: (*Parser).literal},
		TokenThis:         {prefix: (*Parser).this},
		TokenSuper:        {prefix: (*Parser).super},
	}
}

func getRule(kind TokenKind) parseRule { return rules[kind] }

func (p *Parser) expression() { p.parsePrecedence(PrecAssignment) }

func (p *Parser) parsePrecedence(precedence Precedence) {
	p.advance()
	prefix := getRule(p.previous.Kind).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := precedence <= PrecAssignment
	prefix(p, canAssign)

	for precedence <= getRule(p.current.Kind).precedence {
		p.advance()
		infix := getRule(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(TokenEqual) {
		p.error("Invalid assignment target.")
	}
}

func (p *Parser) grouping(canAssign bool) {
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after expression.")
}

func (p *Parser) unary(canAssign bool) {
	opType := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch opType {
	case TokenBang:
		p.emitOp(runtime.OpNot)
	case TokenMinus:
		p.emitOp(runtime.OpNegate)
	}
}

func (p *Parser) binary(canAssign bool) {
	opType := p.previous.Kind
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case TokenBangEqual:
		p.emitOp(runtime.OpEqual)
		p.emitOp(runtime.OpNot)
	case TokenEqualEqual:
		p.emitOp(runtime.OpEqual)
	case TokenGreater:
		p.emitOp(runtime.OpGreater)
	case TokenGreaterEqual:
		p.emitOp(runtime.OpLess)
		p.emitOp(runtime.OpNot)
	case TokenLess:
		p.emitOp(runtime.OpLess)
	case TokenLessEqual:
		p.emitOp(runtime.OpGreater)
		p.emitOp(runtime.OpNot)
	case TokenPlus:
		p.emitOp(runtime.OpAdd)
	case TokenMinus:
		p.emitOp(runtime.OpSubtract)
	case TokenStar:
		p.emitOp(runtime.OpMultiply)
	case TokenSlash:
		p.emitOp(runtime.OpDivide)
	}
}

func (p *Parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitBytes(runtime.OpCall, argCount)
}

func (p *Parser) argumentList() byte {
	count := 0
	if !p.check(TokenRightParen) {
		for {
			p.expression()
			if count == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}

func (p *Parser) dot(canAssign bool) {
	p.consume(TokenIdentifier, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)

	switch {
	case canAssign && p.match(TokenEqual):
		p.expression()
		p.emitBytes(runtime.OpSetProperty, name)
	case p.match(TokenLeftParen):
		argCount := p.argumentList()
		p.emitBytes(runtime.OpInvoke, name)
		p.emitByte(argCount)
	default:
		p.emitBytes(runtime.OpGetProperty, name)
	}
}

func (p *Parser) listLiteral(canAssign bool) {
	count := 0
	if !p.check(TokenRightBracket) {
		for {
			p.expression()
			count++
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightBracket, "Expect ']' after list elements.")
	if count > 0xffff {
		p.error("Too many elements in list literal.")
	}
	p.emitOp(runtime.OpBuildList)
	p.emitByte(byte((count >> 8) & 0xff))
	p.emitByte(byte(count & 0xff))
}

func (p *Parser) subscript(canAssign bool) {
	p.expression()
	p.consume(TokenRightBracket, "Expect ']' after index.")
	if canAssign && p.match(TokenEqual) {
		p.expression()
		p.emitOp(runtime.OpStoreSubscr)
	} else {
		p.emitOp(runtime.OpIndexSubscr)
	}
}

func (p *Parser) and(canAssign bool) {
	endJump := p.emitJump(runtime.OpJumpIfFalse)
	p.emitOp(runtime.OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func (p *Parser) or(canAssign bool) {
	elseJump := p.emitJump(runtime.OpJumpIfFalse)
	endJump := p.emitJump(runtime.OpJump)
	p.patchJump(elseJump)
	p.emitOp(runtime.OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func (p *Parser) literal(canAssign bool) {
	switch p.previous.Kind {
	case TokenFalse:
		p.emitOp(runtime.OpFalse)
	case TokenTrue:
		p.emitOp(runtime.OpTrue)
	case TokenNull:
		p.emitOp(runtime.OpNull)
	}
}

func (p *Parser) number(canAssign bool) {
	value, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(runtime.NumberVal(value))
}

func (p *Parser) stringLiteral(canAssign bool) {
	raw := p.previous.Lexeme
	contents := raw[1 : len(raw)-1] // strip the surrounding quotes; no escape processing
	p.emitConstant(runtime.ObjVal(p.vm.CopyString(contents)))
}

func (p *Parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *Parser) this(canAssign bool) {
	if p.classCompiler == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.namedVariable(p.previous, false)
}

func (p *Parser) super(canAssign bool) {
	if p.classCompiler == nil {
		p.error("Can't use 'super' outside of a class.")
	} else if !p.classCompiler.hasSuperclass {
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(TokenDot, "Expect '.' after 'super'.")
	p.consume(TokenIdentifier, "Expect superclass method name.")
	name := p.identifierConstant(p.previous)

	p.namedVariable(syntheticToken("this"), false)
	if p.match(TokenLeftParen) {
		argCount := p.argumentList()
		p.namedVariable(syntheticToken("super"), false)
		p.emitBytes(runtime.OpSuperInvoke, name)
		p.emitByte(argCount)
	} else {
		p.namedVariable(syntheticToken("super"), false)
		p.emitBytes(runtime.OpGetSuper, name)
	}
}
