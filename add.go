package lanes

// Add launches element-wise addition over two equal-length buffers and
// returns the freshly allocated output buffer together with the launch's
// completion handle. Reading the output before Handle.Wait has returned is
// a caller error: the content is undefined, not a crash.
//
// Both inputs must reside in this context (ContextMismatch otherwise);
// length and element type agreement are validated before any block is
// issued (ShapeMismatch). Zero-length inputs yield an empty output and a
// handle that completes immediately.
//
// Example:
//
//	out, handle, err := ctx.Add(x, y)
//	if err != nil {
//	    return err
//	}
//	if err := handle.Wait(); err != nil {
//	    return err
//	}
//	sums := out.Float32()
func (ctx *Context) Add(x, y *Buffer) (*Buffer, *Handle, error) {
	if x == nil || y == nil {
		return nil, nil, NewInvalidConfigurationError("Add", "nil input buffer")
	}
	if x.ctx != ctx || y.ctx != ctx {
		return nil, nil, NewContextMismatchError("Add", "input buffers must reside in this context")
	}

	out, err := ctx.Alloc(x.Len(), x.Type())
	if err != nil {
		return nil, nil, err
	}

	handle, err := ctx.Launch(addKernel{}, x.Len(), DefaultBlockSize, x, y, out)
	if err != nil {
		ctx.Free(out)
		return nil, nil, err
	}
	return out, handle, nil
}
