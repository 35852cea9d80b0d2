// Package errors provides structured error types for the picomgr library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes a field path and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindCapacity).
//		Path("transport").
//		Detail("code section does not fit in region").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidInput(errors.PhaseRegister, "empty module name")
//	err := errors.AllocationFailed(errors.PhaseAlloc, size, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
