// Package composer is a Go port of the OpenWhisk composition compiler and
// conductor: a combinator algebra for building compositions (package
// compose), a lowering pass that reduces enhanced combinators to a small
// primitive set (package lower), a compiler from that primitive set to a
// flat finite-state program with relative jumps (package fsm), and a
// conductor that steps a compiled program to completion or suspends for a
// remote action invocation via a $resume continuation token (package
// conduct). Package registry persists composition sources, and package
// devtools renders a compiled program as Graphviz or Mermaid and a
// registered composition's documentation as HTML.
package composer
