// Package chain coalesces runs of related directives (if/elseif/else,
// switch/case/default) into a single expression node.
//
// Chain members are only tagged during the attribute pass; Coalesce does the
// structural work afterwards, one parent at a time.
package chain

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/kilianc/directify/internal/directify/ast"
	"github.com/kilianc/directify/internal/directify/directive"
)

var ErrInvalidChain = errors.New("chain: invalid definition")

type MemberConfig struct {
	NeedsExpression bool
	// Extract overrides directive.Extract for this member.
	Extract func(*ast.Attr) string
}

// RewriteFunc turns the ordered members of one matched run into the node
// that replaces the run.
type RewriteFunc func(members []*ast.Element) ast.Node

type Definition struct {
	Name      string
	Members   map[string]MemberConfig
	Start     string
	Continues []string
	// Terminals close the run once matched, e.g. `else`.
	Terminals []string
	Rewrite   RewriteFunc
}

func (d *Definition) continues(kind string) bool {
	return kind != "" && slices.Contains(d.Continues, kind)
}

func (d *Definition) terminal(kind string) bool {
	return slices.Contains(d.Terminals, kind)
}

// MemberNames returns the directive names of d in sorted order.
func (d *Definition) MemberNames() []string {
	names := make([]string, 0, len(d.Members))
	for name := range d.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Definition) validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("%w: nil", ErrInvalidChain)
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidChain)
	case d.Rewrite == nil:
		return fmt.Errorf("%w: %s: no rewrite function", ErrInvalidChain, d.Name)
	}
	if _, ok := d.Members[d.Start]; !ok {
		return fmt.Errorf("%w: %s: start %q is not a member", ErrInvalidChain, d.Name, d.Start)
	}
	for _, k := range append(slices.Clone(d.Continues), d.Terminals...) {
		if _, ok := d.Members[k]; !ok {
			return fmt.Errorf("%w: %s: %q is not a member", ErrInvalidChain, d.Name, k)
		}
	}
	return nil
}

// Registry holds chain definitions. Build one per configuration and pass it
// to every transform that should see those chains.
type Registry struct {
	chains   []*Definition
	byMember map[string]*Definition
	byStart  map[string]*Definition
}

func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{
		byMember: map[string]*Definition{},
		byStart:  map[string]*Definition{},
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry with the if and switch chains.
func Default() *Registry {
	r, err := NewRegistry(IfChain(), SwitchChain())
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds d. A member name or start kind can belong to one chain only.
func (r *Registry) Register(d *Definition) error {
	if err := d.validate(); err != nil {
		return err
	}
	if prev, ok := r.byStart[d.Start]; ok {
		return fmt.Errorf("%w: %s: start %q already used by %s", ErrInvalidChain, d.Name, d.Start, prev.Name)
	}
	for _, name := range d.MemberNames() {
		if prev, ok := r.byMember[name]; ok {
			return fmt.Errorf("%w: %s: member %q already used by %s", ErrInvalidChain, d.Name, name, prev.Name)
		}
	}
	r.chains = append(r.chains, d)
	r.byStart[d.Start] = d
	for name := range d.Members {
		r.byMember[name] = d
	}
	return nil
}

func (r *Registry) Chains() []*Definition {
	return slices.Clone(r.chains)
}

func (r *Registry) ByStart(kind string) (*Definition, bool) {
	d, ok := r.byStart[kind]
	return d, ok
}

func (r *Registry) ByMember(name string) (*Definition, bool) {
	d, ok := r.byMember[name]
	return d, ok
}

// Merge returns user plus a MemberHandler for every chain member user does
// not already handle. user is not modified.
func (r *Registry) Merge(user directive.Handlers) directive.Handlers {
	out := user.Clone()
	for _, d := range r.chains {
		for _, name := range d.MemberNames() {
			if h, ok := out[name]; !ok || h == nil {
				out[name] = MemberHandler(d, name)
			}
		}
	}
	return out
}

// MemberHandler tags the element with its directive name, and with the
// extracted expression when the member needs one. It never changes structure.
func MemberHandler(d *Definition, name string) directive.Handler {
	cfg := d.Members[name]
	extract := cfg.Extract
	if extract == nil {
		extract = directive.Extract
	}
	return directive.HandlerFunc(func(a *directive.Args) {
		a.RemoveAttribute()
		expr := ""
		if cfg.NeedsExpression {
			expr = extract(a.Attr)
		}
		a.Mark(name, expr)
	})
}
