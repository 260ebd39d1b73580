// Package lanes provides a minimal SPMD kernel-dispatch runtime with a
// CUDA-like launch model, executed on CPU goroutines.
//
// A 1-D problem domain is partitioned into fixed-size blocks, each block
// instance executes a per-block compute body against masked lanes, and the
// whole grid runs asynchronously on an execution stream. Results become
// valid only after synchronizing on the completion handle returned by the
// launch.
//
// Example usage:
//
//	x, _ := lanes.Alloc(n, lanes.Float32)
//	y, _ := lanes.Alloc(n, lanes.Float32)
//	defer lanes.Free(x)
//	defer lanes.Free(y)
//
//	// ... fill x and y through their Float32() views ...
//
//	out, handle, err := lanes.Add(x, y)
//	if err != nil {
//		return err
//	}
//	defer lanes.Free(out)
//
//	if err := handle.Wait(); err != nil {
//		return err
//	}
//	sum := out.Float32() // valid only after Wait
//
// Cancellation of an in-flight grid is not supported; once block instances
// are issued they run to completion and faults surface from Wait.
package lanes
