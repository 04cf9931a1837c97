// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ordervet is a go/analysis pass that checks lockorder usage ahead
// of execution. It rebuilds the declared order from DeclareOrder and
// MustDeclareOrder calls in the package and reports declarations that would
// close a cycle, then follows Root/Acquire token flow inside each function
// and reports acquisitions the declared closure does not permit, naming the
// identities involved and the missing or reversed declaration.
//
// The analysis is intentionally shallow where token flow is concerned: it
// resolves identities and locks bound to variables and tracks tokens
// through straight-line assignments. Anything it cannot resolve is left to
// the runtime checks, which remain authoritative.
package ordervet

import (
	"errors"
	"go/ast"
	"go/types"
	"strconv"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/ZaparooProject/go-lockorder/internal/dag"
)

// Analyzer checks lock-order declarations and acquisitions at build time.
var Analyzer = &analysis.Analyzer{
	Name:     "ordervet",
	Doc:      "report cyclic lock-order declarations and acquisitions that violate the declared order",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// targetPkg is the package whose API the analyzer recognizes. Matching by
// package name rather than import path keeps the analyzer testable against
// the analysistest stub tree.
const targetPkg = "lockorder"

type checker struct {
	pass *analysis.Pass
	// names maps an identity object (a var bound to NewID, or the package's
	// Unlocked var) to its diagnostic name.
	names map[types.Object]string
	// locks maps a lock variable object to its identity object.
	locks map[types.Object]types.Object
	// tokens maps a token variable object to the identity chain it
	// witnesses, root-first, so tokens[t][0] is always Unlocked.
	tokens map[types.Object][]types.Object
	// order is the closure rebuilt from the package's declarations.
	order *dag.Closure[types.Object]
}

func run(pass *analysis.Pass) (any, error) {
	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, errors.New("missing inspect result")
	}

	c := &checker{
		pass:   pass,
		names:  make(map[types.Object]string),
		locks:  make(map[types.Object]types.Object),
		tokens: make(map[types.Object][]types.Object),
		order:  dag.New[types.Object](),
	}

	bindNodes := []ast.Node{(*ast.AssignStmt)(nil), (*ast.ValueSpec)(nil)}

	// First pass: identity and lock bindings. These are setup-time
	// declarations, typically package vars, so they must be known before
	// any edge or acquisition is looked at.
	insp.Preorder(bindNodes, func(n ast.Node) {
		switch stmt := n.(type) {
		case *ast.AssignStmt:
			c.bindAssign(stmt.Lhs, stmt.Rhs)
		case *ast.ValueSpec:
			lhs := make([]ast.Expr, len(stmt.Names))
			for i, name := range stmt.Names {
				lhs[i] = name
			}
			c.bindAssign(lhs, stmt.Values)
		}
	})

	// Second pass: order declarations, in file order, mirroring how the
	// runtime registry would see them.
	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return
		}
		if c.calleeIs(call, "DeclareOrder") || c.calleeIs(call, "MustDeclareOrder") {
			c.checkDeclare(call)
		}
	})

	// Third pass: token flow through Root/Acquire/With.
	insp.Preorder(bindNodes, func(n ast.Node) {
		switch stmt := n.(type) {
		case *ast.AssignStmt:
			c.flowAssign(stmt.Lhs, stmt.Rhs)
		case *ast.ValueSpec:
			lhs := make([]ast.Expr, len(stmt.Names))
			for i, name := range stmt.Names {
				lhs[i] = name
			}
			c.flowAssign(lhs, stmt.Values)
		}
	})
	insp.Preorder([]ast.Node{(*ast.ExprStmt)(nil)}, func(n ast.Node) {
		stmt, ok := n.(*ast.ExprStmt)
		if !ok {
			return
		}
		if call, ok := stmt.X.(*ast.CallExpr); ok {
			c.checkBareCall(call)
		}
	})

	return nil, nil //nolint:nilnil // analyzers without facts return nil results
}

// calleeIs reports whether call invokes the named function or method of the
// lockorder package.
func (c *checker) calleeIs(call *ast.CallExpr, name string) bool {
	fn := typeutil.Callee(c.pass.TypesInfo, call)
	f, ok := fn.(*types.Func)
	if !ok || f.Name() != name {
		return false
	}
	return f.Pkg() != nil && f.Pkg().Name() == targetPkg
}

// bindAssign records identity and lock bindings of the forms
//
//	x := lockorder.NewID("x")        // also var x = ...
//	l := lockorder.NewGuardedLock(x, v)
func (c *checker) bindAssign(lhs, rhs []ast.Expr) {
	if len(rhs) != 1 || len(lhs) != 1 {
		return
	}
	call, ok := rhs[0].(*ast.CallExpr)
	if !ok {
		return
	}
	target, ok := lhs[0].(*ast.Ident)
	if !ok {
		return
	}
	obj := c.pass.TypesInfo.ObjectOf(target)
	if obj == nil {
		return
	}

	switch {
	case c.calleeIs(call, "NewID"):
		c.names[obj] = identityName(obj, call)
	case c.calleeIs(call, "NewGuardedLock") && len(call.Args) >= 1:
		if id, ok := c.identityOf(call.Args[0]); ok {
			c.locks[obj] = id
		}
	}
}

// checkDeclare mirrors the registry's declaration-time refusal.
func (c *checker) checkDeclare(call *ast.CallExpr) {
	if len(call.Args) != 2 {
		return
	}
	lower, lok := c.identityOf(call.Args[0])
	higher, hok := c.identityOf(call.Args[1])
	if !lok || !hok {
		return
	}

	switch err := c.order.Add(lower, higher); {
	case err == dag.ErrSelfEdge:
		c.pass.Reportf(call.Pos(), "identity %q cannot be ordered after itself", c.name(lower))
	case err == dag.ErrCycle:
		c.pass.Reportf(call.Pos(),
			"declaring %q before %q would close a cycle: %q already precedes %q in the declared order",
			c.name(lower), c.name(higher), c.name(higher), c.name(lower))
	case err == dag.ErrRedundant:
		c.pass.Reportf(call.Pos(),
			"redundant declaration: %q already precedes %q", c.name(lower), c.name(higher))
	}
}

// flowAssign tracks tokens through
//
//	tok := lockorder.Root()
//	g, tok2, err := l.Acquire(tok)
func (c *checker) flowAssign(lhs, rhs []ast.Expr) {
	if len(rhs) != 1 {
		return
	}
	call, ok := rhs[0].(*ast.CallExpr)
	if !ok {
		return
	}

	switch {
	case c.calleeIs(call, "Root") && len(lhs) == 1:
		obj := identObj(c.pass.TypesInfo, lhs[0])
		unlocked := c.unlockedObj()
		if obj != nil && unlocked != nil {
			c.tokens[obj] = []types.Object{unlocked}
		}
	case c.calleeIs(call, "Acquire") && len(lhs) == 3:
		lockID, chain, ok := c.checkAcquire(call)
		if !ok {
			return
		}
		if obj := identObj(c.pass.TypesInfo, lhs[1]); obj != nil {
			next := make([]types.Object, 0, len(chain)+1)
			next = append(next, chain...)
			c.tokens[obj] = append(next, lockID)
		}
	case c.calleeIs(call, "With"):
		_, _, _ = c.checkAcquire(call)
	}
}

// checkBareCall handles acquisitions whose results are discarded and With
// calls, which carry a token argument but return no new tip.
func (c *checker) checkBareCall(call *ast.CallExpr) {
	if c.calleeIs(call, "Acquire") || c.calleeIs(call, "With") {
		_, _, _ = c.checkAcquire(call)
	}
}

// checkAcquire resolves an Acquire or With call's lock identity and token
// chain and reports a diagnostic when the declared closure does not permit
// the acquisition, mirroring the runtime rule: the target may not precede
// any chain identity, and some held lock (or Unlocked, for a bare root
// chain) must precede the target. It returns the resolved lock identity
// and chain for token propagation.
func (c *checker) checkAcquire(call *ast.CallExpr) (lockID types.Object, chain []types.Object, ok bool) {
	sel, selOK := call.Fun.(*ast.SelectorExpr)
	if !selOK || len(call.Args) < 1 {
		return nil, nil, false
	}
	lockObj := identObj(c.pass.TypesInfo, sel.X)
	if lockObj == nil {
		return nil, nil, false
	}
	lockID, lockKnown := c.locks[lockObj]
	tokObj := identObj(c.pass.TypesInfo, call.Args[0])
	if tokObj == nil {
		return nil, nil, false
	}
	chain, tokKnown := c.tokens[tokObj]
	if !lockKnown || !tokKnown {
		return nil, nil, false
	}

	// Tip-most blocking identity first, matching the runtime walk.
	for i := len(chain) - 1; i >= 0; i-- {
		if c.order.Reaches(lockID, chain[i]) {
			c.pass.Reportf(call.Pos(),
				"cannot acquire %q while holding %q; %q is declared to precede %q",
				c.name(lockID), c.name(chain[i]), c.name(lockID), c.name(chain[i]))
			return lockID, chain, true
		}
	}
	held := chain[1:]
	if len(held) == 0 {
		held = chain
	}
	for _, h := range held {
		if c.order.Reaches(h, lockID) {
			return lockID, chain, true
		}
	}
	tip := chain[len(chain)-1]
	c.pass.Reportf(call.Pos(),
		"cannot acquire %q while holding %q; no DeclareOrder(%q, %q) is in effect",
		c.name(lockID), c.name(tip), c.name(tip), c.name(lockID))
	return lockID, chain, true
}

// identityOf resolves an expression naming a lock identity: a var bound to
// NewID, or the lockorder package's Unlocked var.
func (c *checker) identityOf(expr ast.Expr) (types.Object, bool) {
	obj := identObj(c.pass.TypesInfo, expr)
	if obj == nil {
		return nil, false
	}
	if _, ok := c.names[obj]; ok {
		return obj, true
	}
	if isUnlockedVar(obj) {
		return obj, true
	}
	return nil, false
}

func (c *checker) unlockedObj() types.Object {
	// Any reference resolves to the one var object, so locate it through
	// the imported package rather than caching per reference.
	for _, imp := range c.pass.Pkg.Imports() {
		if imp.Name() == targetPkg {
			if obj := imp.Scope().Lookup("Unlocked"); obj != nil {
				return obj
			}
		}
	}
	return nil
}

func (c *checker) name(id types.Object) string {
	if id == nil {
		return "<unknown>"
	}
	if isUnlockedVar(id) {
		return "unlocked"
	}
	if n, ok := c.names[id]; ok {
		return n
	}
	return id.Name()
}

func isUnlockedVar(obj types.Object) bool {
	return obj != nil && obj.Name() == "Unlocked" &&
		obj.Pkg() != nil && obj.Pkg().Name() == targetPkg
}

// identityName prefers the NewID string literal, falling back to the bound
// variable's name.
func identityName(obj types.Object, call *ast.CallExpr) string {
	if len(call.Args) == 1 {
		if lit, ok := call.Args[0].(*ast.BasicLit); ok {
			if s, err := strconv.Unquote(lit.Value); err == nil {
				return s
			}
		}
	}
	return obj.Name()
}

// identObj resolves a plain identifier or package selector to its object.
func identObj(info *types.Info, expr ast.Expr) types.Object {
	switch e := expr.(type) {
	case *ast.Ident:
		return info.ObjectOf(e)
	case *ast.SelectorExpr:
		return info.ObjectOf(e.Sel)
	case *ast.UnaryExpr:
		return identObj(info, e.X)
	case *ast.ParenExpr:
		return identObj(info, e.X)
	}
	return nil
}
