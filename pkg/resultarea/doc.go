// Package resultarea implements the result area as a versioned render target.
//
// Every Clear advances a generation counter and cancels the work registered
// for older generations. Writers tag their blocks with the generation they
// started under; writes carrying an old generation are dropped, so a slow
// response or a pending reveal can never draw over newer content.
package resultarea
