// Package visibility defines how conditional field visibility is evaluated.
// The expr subpackage ships the default expression language; hosts can plug
// any Evaluator into the form builder instead.
package visibility
