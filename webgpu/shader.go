package webgpu

import "fmt"

// addShader generates the WGSL element-wise addition kernel. The bound
// guard is the device-side form of the lane mask: invocations at or beyond
// N return before any storage access.
func addShader(workgroupX, n int) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read>       x   : array<f32>;
@group(0) @binding(1) var<storage, read>       y   : array<f32>;
@group(0) @binding(2) var<storage, read_write> dst : array<f32>;

const N: u32 = %du;

@compute @workgroup_size(%d, 1, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= N) { return; }

    dst[i] = x[i] + y[i];
}
`, n, workgroupX)
}
