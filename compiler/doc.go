/*

Process of compilation

Program Text ->
	cst.Parse ->
Concrete Syntax Tree (cst) ->
	lower.Lower ->
Abstract Syntax Tree (ast) ->
	wat.Generate (+ symtab) ->
Instruction Listing (wat) ->
	wat.Module ->
Module Text

Instruction Listing ->
	vm.Run ->
Value of $last (and whatever print wrote)

*/
package compiler
