// Package directify rewrites directive attributes (d:if, d:for, d:switch, ...)
// in component markup into plain expressions.
package directify

import (
	"github.com/kilianc/directify/internal/directify/chain"
	"github.com/kilianc/directify/internal/directify/directive"
	"github.com/kilianc/directify/internal/directify/transform"
)

type (
	Options     = transform.Options
	Transformer = transform.Transformer
	Result      = transform.Result
	Cache       = transform.Cache

	Handler     = directive.Handler
	HandlerFunc = directive.HandlerFunc
	Handlers    = directive.Handlers
	Args        = directive.Args
	Diagnostic  = directive.Diagnostic

	ChainRegistry   = chain.Registry
	ChainDefinition = chain.Definition
	MemberConfig    = chain.MemberConfig
)

const DefaultPrefix = transform.DefaultPrefix

var (
	// If and For are the built-in immediate handlers, usable in custom handler sets.
	If  = directive.If
	For = directive.For
)

func New(opts Options) *Transformer { return transform.New(opts) }

func NewCache() *Cache { return transform.NewCache() }

// DefaultHandlers returns for plus every member of the built-in if and switch
// chains.
func DefaultHandlers() Handlers {
	return chain.Default().Merge(transform.DefaultHandlers())
}

// DefaultChains returns a fresh registry holding the built-in if and switch chains.
func DefaultChains() *ChainRegistry { return chain.Default() }

// Transform rewrites src with the default handlers and prefix.
func Transform(key, src string) (string, error) {
	return transform.New(transform.Options{}).Transform(key, src)
}
