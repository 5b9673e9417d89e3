package ledger

// Typed fakes. Each wraps a Ledger under a fixed function name so a fake
// implementation reads as a one-liner and priming is type-checked.

// Func0 fakes a function with no arguments and one result.
type Func0[R any] struct {
	l    *Ledger
	name string
}

// NewFunc0 binds a Func0 named name to l.
func NewFunc0[R any](l *Ledger, name string) *Func0[R] {
	return &Func0[R]{l: l, name: name}
}

// ExpectAndReturn primes one call returning r.
func (f *Func0[R]) ExpectAndReturn(r R) *Expectation {
	return f.l.Expect(f.name).Returns(r)
}

// ExpectAndCall primes one call whose result is computed by fn.
func (f *Func0[R]) ExpectAndCall(fn func() R) *Expectation {
	return f.l.Expect(f.name).Do(func([]any) []any {
		return []any{fn()}
	})
}

// Call consumes the next expectation.
func (f *Func0[R]) Call() R {
	return returnAt[R](f.name, f.l.Consume(f.name), 0)
}

// Func1 fakes a function with one argument and one result.
type Func1[A, R any] struct {
	l    *Ledger
	name string
}

// NewFunc1 binds a Func1 named name to l.
func NewFunc1[A, R any](l *Ledger, name string) *Func1[A, R] {
	return &Func1[A, R]{l: l, name: name}
}

// ExpectAndReturn primes one call with argument a returning r.
func (f *Func1[A, R]) ExpectAndReturn(a A, r R) *Expectation {
	return f.l.Expect(f.name, a).Returns(r)
}

// ExpectAnyArgsAndReturn primes one call with any argument returning r.
func (f *Func1[A, R]) ExpectAnyArgsAndReturn(r R) *Expectation {
	return f.l.Expect(f.name, Any).Returns(r)
}

// ExpectAndCall primes one call (any argument) answered by fn.
func (f *Func1[A, R]) ExpectAndCall(fn func(A) R) *Expectation {
	return f.l.Expect(f.name, Any).Do(func(args []any) []any {
		return []any{fn(argAt[A](args, 0))}
	})
}

// Call consumes the next expectation.
func (f *Func1[A, R]) Call(a A) R {
	return returnAt[R](f.name, f.l.Consume(f.name, a), 0)
}

// Func2 fakes a function with two arguments and one result.
type Func2[A, B, R any] struct {
	l    *Ledger
	name string
}

// NewFunc2 binds a Func2 named name to l.
func NewFunc2[A, B, R any](l *Ledger, name string) *Func2[A, B, R] {
	return &Func2[A, B, R]{l: l, name: name}
}

// ExpectAndReturn primes one call with (a, b) returning r.
func (f *Func2[A, B, R]) ExpectAndReturn(a A, b B, r R) *Expectation {
	return f.l.Expect(f.name, a, b).Returns(r)
}

// ExpectAnyArgsAndReturn primes one call with any arguments returning r.
func (f *Func2[A, B, R]) ExpectAnyArgsAndReturn(r R) *Expectation {
	return f.l.Expect(f.name, Any, Any).Returns(r)
}

// ExpectAndCall primes one call (any arguments) answered by fn.
func (f *Func2[A, B, R]) ExpectAndCall(fn func(A, B) R) *Expectation {
	return f.l.Expect(f.name, Any, Any).Do(func(args []any) []any {
		return []any{fn(argAt[A](args, 0), argAt[B](args, 1))}
	})
}

// Call consumes the next expectation.
func (f *Func2[A, B, R]) Call(a A, b B) R {
	return returnAt[R](f.name, f.l.Consume(f.name, a, b), 0)
}

// Func3 fakes a function with three arguments and one result.
type Func3[A, B, C, R any] struct {
	l    *Ledger
	name string
}

// NewFunc3 binds a Func3 named name to l.
func NewFunc3[A, B, C, R any](l *Ledger, name string) *Func3[A, B, C, R] {
	return &Func3[A, B, C, R]{l: l, name: name}
}

// ExpectAndReturn primes one call with (a, b, c) returning r.
func (f *Func3[A, B, C, R]) ExpectAndReturn(a A, b B, c C, r R) *Expectation {
	return f.l.Expect(f.name, a, b, c).Returns(r)
}

// ExpectAnyArgsAndReturn primes one call with any arguments returning r.
func (f *Func3[A, B, C, R]) ExpectAnyArgsAndReturn(r R) *Expectation {
	return f.l.Expect(f.name, Any, Any, Any).Returns(r)
}

// Call consumes the next expectation.
func (f *Func3[A, B, C, R]) Call(a A, b B, c C) R {
	return returnAt[R](f.name, f.l.Consume(f.name, a, b, c), 0)
}

// Proc0 fakes a function with no arguments and no result.
type Proc0 struct {
	l    *Ledger
	name string
}

// NewProc0 binds a Proc0 named name to l.
func NewProc0(l *Ledger, name string) *Proc0 {
	return &Proc0{l: l, name: name}
}

// Expect primes one call.
func (p *Proc0) Expect() *Expectation {
	return p.l.Expect(p.name)
}

// Call consumes the next expectation.
func (p *Proc0) Call() {
	p.l.Consume(p.name)
}

// Proc1 fakes a function with one argument and no result.
type Proc1[A any] struct {
	l    *Ledger
	name string
}

// NewProc1 binds a Proc1 named name to l.
func NewProc1[A any](l *Ledger, name string) *Proc1[A] {
	return &Proc1[A]{l: l, name: name}
}

// Expect primes one call with argument a.
func (p *Proc1[A]) Expect(a A) *Expectation {
	return p.l.Expect(p.name, a)
}

// ExpectAnyArgs primes one call with any argument.
func (p *Proc1[A]) ExpectAnyArgs() *Expectation {
	return p.l.Expect(p.name, Any)
}

// ExpectAndCall primes one call (any argument) handled by fn.
func (p *Proc1[A]) ExpectAndCall(fn func(A)) *Expectation {
	return p.l.Expect(p.name, Any).Do(func(args []any) []any {
		fn(argAt[A](args, 0))
		return nil
	})
}

// Call consumes the next expectation.
func (p *Proc1[A]) Call(a A) {
	p.l.Consume(p.name, a)
}

// Proc2 fakes a function with two arguments and no result.
type Proc2[A, B any] struct {
	l    *Ledger
	name string
}

// NewProc2 binds a Proc2 named name to l.
func NewProc2[A, B any](l *Ledger, name string) *Proc2[A, B] {
	return &Proc2[A, B]{l: l, name: name}
}

// Expect primes one call with (a, b).
func (p *Proc2[A, B]) Expect(a A, b B) *Expectation {
	return p.l.Expect(p.name, a, b)
}

// ExpectAnyArgs primes one call with any arguments.
func (p *Proc2[A, B]) ExpectAnyArgs() *Expectation {
	return p.l.Expect(p.name, Any, Any)
}

// Call consumes the next expectation.
func (p *Proc2[A, B]) Call(a A, b B) {
	p.l.Consume(p.name, a, b)
}

func argAt[T any](args []any, i int) T {
	v, _ := args[i].(T)
	return v
}
